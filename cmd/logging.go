package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/pkg/log"
)

var logger = log.New("pathtracer")

// logLevel picks the verbosity: --log-level wins over -v and -vv
func logLevel(ctx *cli.Context) (log.Level, error) {
	if name := ctx.GlobalString("log-level"); name != "" {
		return log.ParseLevel(name)
	}
	if ctx.GlobalBool("vv") {
		return log.Debug, nil
	}
	if ctx.GlobalBool("v") {
		return log.Info, nil
	}
	return log.Notice, nil
}

func setupLogging(ctx *cli.Context) error {
	level, err := logLevel(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
