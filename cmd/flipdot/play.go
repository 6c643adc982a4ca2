package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/flipdot/flipdot-studio/internal/playback"
	"github.com/flipdot/flipdot-studio/internal/projectfile"
)

func playAction(c *cli.Context) error {
	path, err := getArg(c, "project file")
	if err != nil {
		return err
	}
	loops := c.Int("loops")
	if loops < 0 {
		return fmt.Errorf("loops must not be negative")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := cliLogger(cfg)

	mqttCfg := cfg.MQTT()
	if !mqttCfg.Enabled() {
		return fmt.Errorf("no display broker configured; set mqtt.url in config.yaml or FLIPDOT_MQTT_URL")
	}

	pf, err := projectfile.Load(path)
	if err != nil {
		return err
	}
	frames, err := pf.ToFrames()
	if err != nil {
		return err
	}

	client, err := playback.ConnectMQTT(mqttCfg, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := &playback.Player{
		Frames:        frames,
		FrameDuration: pf.Settings().FrameDuration(),
		Loops:         loops,
		Sink:          playback.NewMQTTSink(client, mqttCfg.Topic),
		Logger:        logger,
	}

	logger.Info("playing project", "name", pf.Name, "frames", len(frames), "topic", mqttCfg.Topic)
	if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
