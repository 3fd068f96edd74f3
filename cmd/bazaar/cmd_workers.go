package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/internal/server"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

var workerCount int

// bazaar queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers without the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.New()
		if err != nil {
			return err
		}

		n := workerCount
		if n <= 0 {
			n = config.QueueWorkers()
		}
		app.StartWorkers(n)
		logger.Info("queue workers started", "workers", n)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		app.Shutdown()
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVar(&workerCount, "workers", 0, "number of workers (default from config)")
}
