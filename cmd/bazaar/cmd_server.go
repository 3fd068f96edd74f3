package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/internal/server"
)

// bazaar serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with embedded queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.New()
		if err != nil {
			return err
		}
		return app.Start()
	},
}

// bazaar route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.New()
		if err != nil {
			return err
		}
		defer app.Shutdown()

		for _, route := range app.Router.Routes() {
			fmt.Printf("%-7s %-40s %s\n", route.Method, route.Path, route.Name)
		}
		return nil
	},
}
