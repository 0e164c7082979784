package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/replicate/go/logging"
	"github.com/replicate/go/must"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/launcher"
	"github.com/appstrap/appstrap/internal/manifest"
	"github.com/appstrap/appstrap/internal/mysql"
	"github.com/appstrap/appstrap/internal/scaffold"
	"github.com/appstrap/appstrap/internal/service"
	"github.com/appstrap/appstrap/internal/util"
)

var logger = logging.New("appstrap")

type ServeConfig struct {
	Host                string        `ff:"long: host, default: 0.0.0.0, usage: HTTP server host"`
	Port                int           `ff:"long: port, default: 8000, usage: HTTP server port"`
	ShutdownGracePeriod time.Duration `ff:"long: shutdown-grace-period, default: 10s, usage: graceful shutdown window"`
}

type ScaffoldConfig struct {
	Dir   string `ff:"long: dir, nodefault, usage: target project directory (default frontend)"`
	Force bool   `ff:"long: force, default: false, usage: overwrite existing scaffold files"`
}

func launchCommand() *ff.Command {
	log := logger.Sugar()

	flags := ff.NewFlagSet("launch")

	return &ff.Command{
		Name:  "launch",
		Usage: "launch [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			defaults := launcher.Defaults()
			m, err := manifest.Read(must.Get(os.Getwd()))
			switch {
			case err == nil:
				if m.App != "" {
					if _, _, err := m.ModuleAndAttribute(); err != nil {
						log.Errorw("invalid appstrap.yaml", "err", err)
						return err
					}
					defaults.AppModule = m.App
				}
				if m.Host != "" {
					defaults.Host = m.Host
				}
				if m.Port != 0 {
					defaults.Port = strconv.Itoa(m.Port)
				}
			case !errors.Is(err, os.ErrNotExist):
				log.Errorw("failed to read appstrap.yaml", "err", err)
				return err
			}

			opts := launcher.Resolve(os.LookupEnv, defaults)
			log.Infow("launching uvicorn",
				"app-module", opts.AppModule,
				"host", opts.Host,
				"port", opts.Port,
			)
			// Does not return on success: the process image is replaced
			return launcher.New().Launch(opts)
		},
	}
}

func scaffoldCommand() *ff.Command {
	log := logger.Sugar()

	var cfg ScaffoldConfig
	flags := ff.NewFlagSet("scaffold")
	must.Do(flags.AddStruct(&cfg))

	return &ff.Command{
		Name:  "scaffold",
		Usage: "scaffold [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			dir := cfg.Dir
			if dir == "" {
				dir = "frontend"
				if m, err := manifest.Read(must.Get(os.Getwd())); err == nil && m.Frontend != "" {
					dir = m.Frontend
				}
			}
			if err := scaffold.Generate(dir, cfg.Force); err != nil {
				log.Errorw("scaffold failed", "err", err)
				return err
			}
			must.Get(fmt.Fprintf(os.Stdout, "Frontend scaffold written to %s. Next steps:\n", dir))
			for _, c := range scaffold.Commands() {
				must.Get(fmt.Fprintf(os.Stdout, "  cd %s && %s\n", dir, c))
			}
			return nil
		},
	}
}

func serveCommand() *ff.Command {
	log := logger.Sugar()

	var cfg ServeConfig
	flags := ff.NewFlagSet("serve")
	must.Do(flags.AddStruct(&cfg))

	return &ff.Command{
		Name:  "serve",
		Usage: "serve [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			dbCfg, err := mysql.ConfigFromEnv()
			if err != nil {
				return err
			}
			log.Infow("configuration",
				"host", cfg.Host,
				"port", cfg.Port,
				"shutdown-grace-period", cfg.ShutdownGracePeriod,
			)

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				ch := make(chan os.Signal, 1)
				signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
				s := <-ch
				log.Infow("stopping appstrap server", "signal", s)
				cancel()
			}()

			log.Infow("starting appstrap server", "version", util.Version())
			svc := service.New(config.Config{
				Host:                cfg.Host,
				Port:                cfg.Port,
				ShutdownGracePeriod: cfg.ShutdownGracePeriod,
				Database:            dbCfg,
			}, logger)
			if err := svc.Initialize(ctx); err != nil {
				return err
			}
			if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("shutdown completed normally")
			return nil
		},
	}
}

func main() {
	log := logger.Sugar()
	flags := ff.NewFlagSet("appstrap")
	cmd := &ff.Command{
		Name:  "appstrap",
		Usage: "appstrap <COMMAND> [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			return ff.ErrHelp
		},
		Subcommands: []*ff.Command{
			launchCommand(),
			scaffoldCommand(),
			serveCommand(),
		},
	}
	err := cmd.ParseAndRun(context.Background(), os.Args[1:])
	switch {
	case errors.Is(err, ff.ErrHelp):
		must.Get(fmt.Fprintln(os.Stderr, ffhelp.Command(cmd)))
		os.Exit(1)
	case err != nil:
		log.Error(err)
		os.Exit(1)
	}
}
