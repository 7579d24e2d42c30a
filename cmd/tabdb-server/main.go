package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tuannm99/tabdb/internal"
	"github.com/tuannm99/tabdb/internal/logging"
	"github.com/tuannm99/tabdb/internal/sql/executor"
	"github.com/tuannm99/tabdb/internal/storage"
	"github.com/tuannm99/tabdb/server/tabdbwire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tabdb-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("tabdb-server", pflag.ExitOnError)
	cfgPath := fs.String("config", "", "path to a YAML config file")
	printCfg := fs.Bool("print-config", false, "print the effective config and exit")
	fs.String("storage.root", "./data", "directory holding one sub-directory per database")
	fs.String("server.addr", "127.0.0.1:8866", "listen address")
	fs.String("log.level", "info", "debug|info|warn|error")
	fs.String("log.format", "text", "text|json")
	_ = fs.Parse(os.Args[1:])

	v := internal.NewViper()
	if err := internal.ReadConfigFile(v, *cfgPath); err != nil {
		return err
	}
	// only flags given on the command line override the file
	fs.Visit(func(f *pflag.Flag) { _ = v.BindPFlag(f.Name, f) })

	cfg, err := internal.Decode(v)
	if err != nil {
		return err
	}
	if *printCfg {
		return internal.DumpConfig(os.Stdout, cfg)
	}

	log, lv, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	if cfg.Server.Debug {
		lv.Set(slog.LevelDebug)
	}
	slog.SetDefault(log)
	if *cfgPath != "" {
		internal.WatchLogLevel(v, lv)
	}

	if err := os.MkdirAll(cfg.Storage.Root, 0o755); err != nil {
		return fmt.Errorf("create storage root: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ex := executor.NewExecutor(storage.NewOS(cfg.Storage.Root, log), log)
	log.Info("tabdb server starting", "app", cfg.AppName, "root", cfg.Storage.Root)
	return tabdbwire.NewServer(ex, log).Run(ctx, cfg.Server.Addr)
}
