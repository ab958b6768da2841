// cmd/serve.go
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Renders the site on request",
	Long: `The serve command loads the content file and templates once and renders
pages per request at /<lang> and /<lang>/projects. With debug enabled (the
default) it watches the templates directory and the content file and reloads
them on change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		load := server.FileLoader(appConfig.ContentFile, appConfig.TemplatesDir, logger)
		srv, err := server.New(load, server.Options{
			Addr:       appConfig.Addr,
			StaticDir:  appConfig.StaticDir,
			Debug:      appConfig.Debug,
			WatchPaths: []string{appConfig.TemplatesDir, appConfig.ContentFile},
		}, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
