// cmd/build.go
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/generate"
	"github.com/Bitlatte/folio/internal/render"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Writes the whole site as static files",
	Long: `The build command renders every page in every language into the
configured output directory (default './build/'). Links between pages are
relative, so the result can be served by any plain file server. Static assets
are copied to '<output>/static/' and a redirect to the English home page is
written to '<output>/index.html'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runBuildProcess(appConfig, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Build completed successfully in '%s/' directory.\n", strings.TrimRight(appConfig.OutputDir, "/"))
		return nil
	},
}

func runBuildProcess(cfg config.Config, logger *slog.Logger) error {
	doc, err := content.Load(cfg.ContentFile, logger)
	if err != nil {
		return err
	}
	renderer, err := render.New(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	g := &generate.Generator{
		Content:   doc,
		Renderer:  renderer,
		StaticDir: cfg.StaticDir,
		Logger:    logger,
	}
	report, err := g.Generate(cfg.OutputDir)
	if err != nil {
		return err
	}
	logger.Info("build finished",
		"files", len(report.Files),
		"skippedLanguages", report.SkippedLanguages,
		"skippedPages", report.SkippedPages,
	)
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
