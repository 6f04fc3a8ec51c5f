package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/pairchat/internal/config"
	"github.com/matheus3301/pairchat/internal/daemon"
	"github.com/matheus3301/pairchat/internal/session"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", session.DaemonConfigPath(), "daemon config file")
	envFlag := flag.String("env", session.EnvPath(), ".env file applied before the config")
	flag.Parse()

	if err := config.LoadEnvFiles(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadDaemon(*configFlag, session.BaseDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{Config: *cfg}),
	)

	app.Run()
}
