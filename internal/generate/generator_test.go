package generate

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/logging"
	"github.com/Bitlatte/folio/internal/render"
)

type fixture struct {
	templatesDir string
	staticDir    string
	outputDir    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		templatesDir: filepath.Join(root, "templates"),
		staticDir:    filepath.Join(root, "static"),
		outputDir:    filepath.Join(root, "build"),
	}
	write(t, filepath.Join(f.templatesDir, "base.html"),
		`<html lang="{{ .Lang }}"><link href="{{ static "css/site.css" }}">{{ block "main" . }}{{ end }}`+
			`<a href="{{ url .Page (toggle .Lang) }}">{{ langName (toggle .Lang) }}</a></html>`)
	write(t, filepath.Join(f.templatesDir, "home.html"),
		`{{ define "main" }}<h1>{{ .Content.name }}</h1><a href="{{ url "projects" .Lang }}">projects</a>{{ end }}`)
	write(t, filepath.Join(f.templatesDir, "projects.html"),
		`{{ define "main" }}<ul>{{ range .Content.projects }}<li>{{ . }}</li>{{ end }}</ul>{{ end }}`)
	write(t, filepath.Join(f.staticDir, "css", "site.css"), "body{}")
	write(t, filepath.Join(f.staticDir, "me.png"), "PNG")
	return f
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func bothLanguages() *content.Document {
	return content.New(map[string]content.Tree{
		"en": map[string]any{"name": "Ada", "projects": []any{"folio"}},
		"fr": map[string]any{"name": "Ada FR", "projects": []any{"folio fr"}},
	})
}

func (f fixture) generator(t *testing.T, doc *content.Document, logger *bytes.Buffer) *Generator {
	t.Helper()
	r, err := render.New(f.templatesDir)
	require.NoError(t, err)
	g := &Generator{Content: doc, Renderer: r, StaticDir: f.staticDir, Logger: logging.Discard()}
	if logger != nil {
		g.Logger = logging.New(logger, "info", true)
	}
	return g
}

// tree maps every file under dir, slash-separated, to its contents.
func tree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(body)
		return nil
	})
	require.NoError(t, err)
	return files
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestGenerateLayout(t *testing.T) {
	f := newFixture(t)

	report, err := f.generator(t, bothLanguages(), nil).Generate(f.outputDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"en/index.html", "en/projects.html", "fr/index.html", "fr/projects.html", "index.html"}, report.Files)
	assert.Empty(t, report.SkippedLanguages)
	assert.Empty(t, report.SkippedPages)

	files := tree(t, f.outputDir)
	assert.ElementsMatch(t, []string{
		"index.html",
		"en/index.html", "en/projects.html",
		"fr/index.html", "fr/projects.html",
		"static/css/site.css", "static/me.png",
	}, keys(files))

	home := files["en/index.html"]
	assert.Contains(t, home, `<html lang="en">`)
	assert.Contains(t, home, `<h1>Ada</h1>`)
	assert.Contains(t, home, `href="../en/projects.html"`)
	assert.Contains(t, home, `href="../static/css/site.css"`)
	assert.Contains(t, home, `<a href="../fr/index.html">français</a>`)

	assert.Contains(t, files["fr/projects.html"], `<li>folio fr</li>`)
	assert.Contains(t, files["fr/projects.html"], `<a href="../en/projects.html">English</a>`)
	assert.Equal(t, "body{}", files["static/css/site.css"])
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	g := f.generator(t, bothLanguages(), nil)

	_, err := g.Generate(f.outputDir)
	require.NoError(t, err)
	first := tree(t, f.outputDir)

	write(t, filepath.Join(f.outputDir, "stale.html"), "left over")
	_, err = g.Generate(f.outputDir)
	require.NoError(t, err)
	second := tree(t, f.outputDir)

	assert.Equal(t, first, second)
	assert.NotContains(t, second, "stale.html")
}

func TestRootRedirectIgnoresContent(t *testing.T) {
	f := newFixture(t)
	onlyFrench := content.New(map[string]content.Tree{"fr": map[string]any{"name": "x"}})

	for _, doc := range []*content.Document{bothLanguages(), onlyFrench} {
		_, err := f.generator(t, doc, nil).Generate(f.outputDir)
		require.NoError(t, err)

		body, err := os.ReadFile(filepath.Join(f.outputDir, "index.html"))
		require.NoError(t, err)
		assert.Equal(t, redirectPage, string(body))
		assert.Contains(t, string(body), `url=en/index.html`)
	}
}

func TestMissingLanguageContentIsSkipped(t *testing.T) {
	f := newFixture(t)
	doc := content.New(map[string]content.Tree{
		"en": map[string]any{"name": "Ada", "projects": []any{}},
	})
	var logs bytes.Buffer

	report, err := f.generator(t, doc, &logs).Generate(f.outputDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"fr"}, report.SkippedLanguages)
	assert.Equal(t, []string{"en/index.html", "en/projects.html", "index.html"}, report.Files)
	assert.Contains(t, logs.String(), "no content for language")
	assert.Contains(t, logs.String(), "lang=fr")

	assert.FileExists(t, filepath.Join(f.outputDir, "en", "index.html"))
	assert.FileExists(t, filepath.Join(f.outputDir, "en", "projects.html"))
	assert.NoFileExists(t, filepath.Join(f.outputDir, "fr", "index.html"))
}

func TestMissingTemplateIsSkippedGlobally(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.templatesDir, "projects.html")))
	var logs bytes.Buffer

	report, err := f.generator(t, bothLanguages(), &logs).Generate(f.outputDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"projects"}, report.SkippedPages)
	assert.Equal(t, []string{"en/index.html", "fr/index.html", "index.html"}, report.Files)
	assert.Contains(t, logs.String(), "template not found")
	assert.NoFileExists(t, filepath.Join(f.outputDir, "en", "projects.html"))
}

func TestFaviconCopiedToRoot(t *testing.T) {
	f := newFixture(t)
	write(t, filepath.Join(f.staticDir, "favicon.ico"), "ICO")

	_, err := f.generator(t, bothLanguages(), nil).Generate(f.outputDir)
	require.NoError(t, err)

	files := tree(t, f.outputDir)
	assert.Equal(t, "ICO", files["favicon.ico"])
	assert.Equal(t, "ICO", files["static/favicon.ico"])
}

func TestMissingStaticDirIsSkipped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.RemoveAll(f.staticDir))

	_, err := f.generator(t, bothLanguages(), nil).Generate(f.outputDir)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(f.outputDir, "static"))
	assert.FileExists(t, filepath.Join(f.outputDir, "en", "index.html"))
}

func TestGeneratedFilesAreWorldReadable(t *testing.T) {
	f := newFixture(t)

	_, err := f.generator(t, bothLanguages(), nil).Generate(f.outputDir)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(f.outputDir, "en", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestAssetCopyFailureAbortsRun(t *testing.T) {
	f := newFixture(t)
	// A dangling link fails to open even for root.
	require.NoError(t, os.Symlink(filepath.Join(f.staticDir, "gone.css"), filepath.Join(f.staticDir, "broken.css")))

	_, err := f.generator(t, bothLanguages(), nil).Generate(f.outputDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy static assets")
	assert.NoFileExists(t, filepath.Join(f.outputDir, "en", "index.html"))
	assert.NoFileExists(t, filepath.Join(f.outputDir, "index.html"))
}

func TestGenerateWithoutLogger(t *testing.T) {
	f := newFixture(t)
	g := f.generator(t, bothLanguages(), nil)
	g.Logger = nil

	report, err := g.Generate(f.outputDir)
	require.NoError(t, err)
	assert.Len(t, report.Files, 5)
}
