package main

import (
	"context"
	"os"
	"os/signal"

	"go.llib.dev/frameless/adapter/localfs"
	"go.llib.dev/frameless/pkg/cli"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/treewalk/internal/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	conf, err := commands.LoadConfig()
	if err != nil {
		logger.Fatal(ctx, "failed to load the configuration", logging.ErrField(err))
		os.Exit(1)
	}
	logger.Configure(func(l *logging.Logger) {
		l.Out = os.Stderr
		l.Level = conf.LogLevel
	})

	cli.Main(ctx, commands.NewMux(commands.Deps{
		Config: conf,
		FS:     &localfs.FileSystem{},
	}))
}
