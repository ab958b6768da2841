// Package generate writes the whole site out as static files.
package generate

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logging"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/render"
)

const (
	staticSubdir = "static"
	faviconName  = "favicon.ico"
	indexName    = "index.html"
)

// redirectPage is written to the output root. It always points at the
// default language's home page.
const redirectPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="0; url=en/index.html" />
</head>
<body>
    <p>Redirecting to <a href="en/index.html">en/index.html</a></p>
</body>
</html>
`

type Generator struct {
	Content   *content.Document
	Renderer  *render.Renderer
	StaticDir string
	Logger    *slog.Logger
}

// Report describes what a run produced.
type Report struct {
	// Files are the written pages, relative to the output directory and
	// slash-separated. Copied assets are not listed.
	Files            []string
	SkippedLanguages []string
	SkippedPages     []string
}

// Generate recreates outputDir from scratch and fills it with every page in
// every language, the static assets and the root redirect. Missing content or
// templates are logged and skipped; any I/O failure aborts the run.
func (g *Generator) Generate(outputDir string) (Report, error) {
	var report Report
	logger := g.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	logger.Info("cleaning output directory", "path", outputDir)
	if err := os.RemoveAll(outputDir); err != nil {
		return report, fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return report, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if err := g.copyAssets(outputDir, logger); err != nil {
		return report, err
	}

	var pages []model.Page
	for _, page := range model.Pages {
		if !g.Renderer.Has(page.Name) {
			logger.Info("template not found, skipping page", "page", page.Name, "template", page.Template)
			report.SkippedPages = append(report.SkippedPages, page.Name)
			continue
		}
		pages = append(pages, page)
	}

	for _, lang := range model.Languages {
		langDir := filepath.Join(outputDir, lang)
		if err := os.MkdirAll(langDir, os.ModePerm); err != nil {
			return report, fmt.Errorf("failed to create directory '%s': %w", langDir, err)
		}

		tree, ok := g.Content.Lookup(lang)
		if !ok {
			logger.Warn("no content for language", "lang", lang)
			report.SkippedLanguages = append(report.SkippedLanguages, lang)
			continue
		}

		for _, page := range pages {
			var buf bytes.Buffer
			data := model.NewPageData(page, lang, tree)
			if err := g.Renderer.Render(&buf, render.StaticRouter{}, page.Name, data); err != nil {
				return report, fmt.Errorf("rendering %s/%s: %w", lang, page.Name, err)
			}
			target := filepath.Join(langDir, page.Output)
			if err := writeFile(target, &buf); err != nil {
				return report, err
			}
			logger.Debug("generated page", "lang", lang, "page", page.Name, "path", target)
			report.Files = append(report.Files, path.Join(lang, page.Output))
		}
	}

	rootIndex := filepath.Join(outputDir, indexName)
	if err := writeFile(rootIndex, bytes.NewBufferString(redirectPage)); err != nil {
		return report, err
	}
	report.Files = append(report.Files, indexName)
	sort.Strings(report.Files)
	return report, nil
}

// copyAssets mirrors StaticDir into <out>/static and lifts the favicon to the
// output root so browsers find it without a link tag.
func (g *Generator) copyAssets(outputDir string, logger *slog.Logger) error {
	if _, err := os.Stat(g.StaticDir); os.IsNotExist(err) {
		logger.Info("static assets directory not found, skipping copy", "path", g.StaticDir)
		return nil
	}

	dst := filepath.Join(outputDir, staticSubdir)
	logger.Info("copying static assets", "from", g.StaticDir, "to", dst)
	if err := copyDirContents(g.StaticDir, dst); err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}

	favicon := filepath.Join(g.StaticDir, faviconName)
	if info, err := os.Stat(favicon); err == nil && !info.IsDir() {
		if err := copyFile(favicon, filepath.Join(outputDir, faviconName)); err != nil {
			return fmt.Errorf("failed to copy favicon: %w", err)
		}
	}
	return nil
}
