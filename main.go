package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/cmd"
	"github.com/df07/go-adaptive-pathtracer/pkg/config"
)

// renderFlags are shared by every command that renders. Values set on the
// command line override the --config file.
func renderFlags(defaults *config.Config) []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: defaults.Scene.Name,
			Usage: "builtin scene name or path to a YAML scene file",
		},
		cli.IntFlag{
			Name:  "width",
			Value: defaults.Render.Width,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: defaults.Render.Height,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "depth",
			Value: defaults.Render.MaxDepth,
			Usage: "maximum number of bounces per path",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: defaults.Render.Seed,
			Usage: "seed for the scheduler, the workers and random scenes",
		},
		cli.IntFlag{
			Name:  "workers, w",
			Value: defaults.Render.Workers,
			Usage: "number of sampling workers, 0 uses one per CPU",
		},
		cli.Float64Flag{
			Name:  "target-ms",
			Value: defaults.Scheduler.TargetFrameMs,
			Usage: "target frame time in milliseconds",
		},
		cli.IntFlag{
			Name:  "initial-budget",
			Value: defaults.Scheduler.InitialBudget,
			Usage: "samples scheduled for the first frame",
		},
		cli.IntFlag{
			Name:  "min-budget",
			Value: defaults.Scheduler.MinBudget,
			Usage: "lower bound of the per-frame sample budget",
		},
		cli.IntFlag{
			Name:  "max-budget",
			Value: defaults.Scheduler.MaxBudget,
			Usage: "upper bound of the per-frame sample budget, 0 for none",
		},
		cli.IntFlag{
			Name:  "stats",
			Value: defaults.Stats.Interval,
			Usage: "print timer statistics every N frames, 0 to disable",
		},
		cli.StringFlag{
			Name:  "prefix, p",
			Value: defaults.Output.Prefix,
			Usage: "write every frame to <prefix><frame>.png",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	defaults := config.Default()

	app := cli.NewApp()
	app.Name = "go-adaptive-pathtracer"
	app.Usage = "progressively render sphere scenes with an adaptive sample budget"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, notice, warning or error; overrides -v and -vv",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render headlessly for a number of frames",
			Description: `
Render the scene progressively without a window. Each frame spends roughly the
target frame time sampling; the image keeps refining until --frames frames
were rendered or every pixel has --spp samples.

With --prefix every frame is written as <prefix><frame:05>.png.`,
			Flags: append(renderFlags(defaults),
				cli.IntFlag{
					Name:  "frames, f",
					Value: defaults.Output.Frames,
					Usage: "number of frames to render, 0 to run until interrupted",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "stop once every pixel has this many samples",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename for the final frame",
				},
				cli.BoolFlag{
					Name:  "host-info",
					Usage: "print CPU and memory information before rendering",
				},
			),
			Action: cmd.RenderFrames,
		},
		{
			Name:  "interactive",
			Usage: "render in a window",
			Description: `
Open a window showing the progressive render. Press Escape or close the window
to quit, R to restart accumulation.`,
			Flags: append(renderFlags(defaults),
				cli.Float64Flag{
					Name:  "scale",
					Value: defaults.Display.Scale,
					Usage: "window size relative to the frame",
				},
			),
			Action: cmd.RenderInteractive,
		},
		{
			Name:  "serve",
			Usage: "render headlessly behind a web preview",
			Flags: append(renderFlags(defaults),
				cli.StringFlag{
					Name:  "addr",
					Value: defaults.Server.Address,
					Usage: "listen address",
				},
				cli.StringFlag{
					Name:  "scene-dir",
					Value: defaults.Scene.Directory,
					Usage: "directory scanned for YAML scene files",
				},
				cli.IntFlag{
					Name:  "console-lines",
					Value: 200,
					Usage: "log lines kept for the web console",
				},
			),
			Action: cmd.Serve,
		},
		{
			Name:  "scenes",
			Usage: "list builtin and file scenes",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene-dir",
					Value: defaults.Scene.Directory,
					Usage: "directory scanned for YAML scene files",
				},
				cli.StringFlag{
					Name:  "export, e",
					Usage: "write this scene as a YAML scene file",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "file for --export, stdout if empty",
				},
				cli.IntFlag{
					Name:  "width",
					Value: defaults.Render.Width,
					Usage: "frame width used for the exported camera aspect",
				},
				cli.IntFlag{
					Name:  "height",
					Value: defaults.Render.Height,
					Usage: "frame height used for the exported camera aspect",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: defaults.Render.Seed,
					Usage: "seed for random scenes",
				},
			},
			Action: cmd.ListScenes,
		},
		{
			Name:      "config",
			Usage:     "write the effective configuration as YAML",
			ArgsUsage: "[file]",
			Flags: append(renderFlags(defaults),
				cli.BoolFlag{
					Name:  "force",
					Usage: "overwrite an existing file",
				},
			),
			Action: cmd.WriteConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
