package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/flipdot/flipdot-studio/internal/config"
	"github.com/flipdot/flipdot-studio/internal/logging"
)

var app = cli.NewApp()

func init() {
	app.Name = "flipdot"
	app.Usage = "Flip-dot animation studio and Lottie exporter"
	app.UsageText = "flipdot [--config dir] command [arguments]"
	app.Version = config.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "directory holding config.yaml",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the studio API server",
			Action: serveAction,
		},
		{
			Name:      "export",
			Aliases:   []string{"e"},
			Usage:     "Export a project file as Lottie JSON",
			ArgsUsage: "<project.yaml>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Value: ".", Usage: "output directory"},
			},
			Action: exportAction,
		},
		{
			Name:  "export-all",
			Usage: "Export every stored project",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Usage: "output directory (defaults to the configured export dir)"},
			},
			Action: exportAllAction,
		},
		{
			Name:      "watch",
			Aliases:   []string{"w"},
			Usage:     "Re-export project files whenever they change",
			ArgsUsage: "<dir>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "output, o", Usage: "output directory (defaults to the watched dir)"},
			},
			Action: watchAction,
		},
		{
			Name:      "play",
			Aliases:   []string{"p"},
			Usage:     "Play a project file on the MQTT display",
			ArgsUsage: "<project.yaml>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "loops, l", Value: 1, Usage: "number of passes, 0 plays until interrupted"},
			},
			Action: playAction,
		},
	}
}

// loadConfig reads the configuration selected by the global --config flag.
func loadConfig(c *cli.Context) (*config.FileConfig, error) {
	cfg, err := config.New(c.GlobalString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func getArg(c *cli.Context, name string) (string, error) {
	v := c.Args().Get(0)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// cliLogger logs to stderr so stdout stays free for command output.
func cliLogger(cfg *config.FileConfig) *slog.Logger {
	return logging.NewLoggerTo(os.Stderr, cfg.LogLevel())
}

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}
