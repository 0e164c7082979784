package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/replicate/go/logging"
	"github.com/replicate/go/must"
	_ "go.uber.org/automaxprocs"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/mysql"
	"github.com/appstrap/appstrap/internal/service"
	"github.com/appstrap/appstrap/internal/util"
)

var logger = logging.New("appstrap-server")

type Config struct {
	Host                string        `ff:"long: host, default: 0.0.0.0, usage: HTTP server host"`
	Port                int           `ff:"long: port, default: 8000, usage: HTTP server port"`
	ShutdownGracePeriod time.Duration `ff:"long: shutdown-grace-period, default: 10s, usage: graceful shutdown window"`
}

func main() {
	log := logger.Sugar()

	var cfg Config
	flags := ff.NewFlagSet("appstrap-server")
	must.Do(flags.AddStruct(&cfg))

	cmd := &ff.Command{
		Name:  "appstrap-server",
		Usage: "appstrap-server [FLAGS]",
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
				"mysql-addr", fmt.Sprintf("%s:%d", dbCfg.Host, dbCfg.Port),
			)

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
			return nil
		},
	}

	err := cmd.Parse(os.Args[1:])
	switch {
	case errors.Is(err, ff.ErrHelp):
		must.Get(fmt.Fprintln(os.Stderr, ffhelp.Command(cmd)))
		os.Exit(1)
	case err != nil:
		log.Error(err)
		must.Get(fmt.Fprintln(os.Stderr, ffhelp.Command(cmd)))
		os.Exit(1)
	}

	log.Infow("starting appstrap server", "version", util.Version())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		s := <-ch
		log.Infow("stopping appstrap server", "signal", s)
		cancel()
	}()
	if err := cmd.Run(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	} else {
		log.Info("shutdown completed normally")
	}
}
