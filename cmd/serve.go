package cmd

import (
	"fmt"
	"log"

	"projection-engine/internal/handler"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the projection API over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	server := &fasthttp.Server{
		Handler:            handler.New(e).Handle,
		Name:               "horizon",
		MaxRequestBodySize: appConfig.Server.MaxBodyBytes,
	}

	addr := fmt.Sprintf(":%d", appConfig.Server.Port)
	log.Printf("Projection engine starting on port %d", appConfig.Server.Port)
	if err := server.ListenAndServe(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
