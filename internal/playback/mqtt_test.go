package playback

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
)

type fakeToken struct {
	mqtt.Token
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.msgs = append(p.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: p.err}
}

func TestMQTTSink_PublishesBitmap(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "wall/frames")

	dots := flipdot.NewDots(flipdot.Dimensions{Rows: 4, Columns: 4})
	dots[0][0] = true

	if err := sink.Send(context.Background(), FrameMessage{Dots: dots}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.topic != "wall/frames" || msg.qos != 1 {
		t.Errorf("published to %s qos %d", msg.topic, msg.qos)
	}
	if !bytes.Equal(msg.payload, []byte{4, 4, 0x80, 0x00}) {
		t.Errorf("payload = % x", msg.payload)
	}
}

func TestMQTTSink_PublishError(t *testing.T) {
	brokerErr := errors.New("not connected")
	sink := NewMQTTSink(&fakePublisher{err: brokerErr}, "wall/frames")

	err := sink.Send(context.Background(), FrameMessage{Dots: flipdot.NewDots(flipdot.Dimensions{Rows: 4, Columns: 4})})
	if !errors.Is(err, brokerErr) {
		t.Fatalf("Send() error = %v, want %v", err, brokerErr)
	}
}
