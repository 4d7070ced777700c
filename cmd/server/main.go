package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ricirt/sms-engine/cmd/server/command"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	const description = "SMS dispatch service for the SSL Wireless gateway"
	root := &cobra.Command{
		Use:           "sms-engine",
		Short:         description,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app := &command.App{}
	root.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "YAML config file (default: ./config.yaml or ./configs/config.yaml)")

	root.AddCommand(
		command.Server{App: app}.Command(),
		command.Send{App: app, Out: os.Stdout}.Command(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
