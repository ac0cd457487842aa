package symbolexporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kataras/symbol-exporter/pkg/catalog"
	"github.com/kataras/symbol-exporter/pkg/document"
	"github.com/kataras/symbol-exporter/pkg/exporter"
	"github.com/kataras/symbol-exporter/pkg/presenter"
)

type testDoc struct {
	name  string
	pages []document.Page
}

func (d *testDoc) Name() string           { return d.name }
func (d *testDoc) Pages() []document.Page { return d.pages }

type testPage struct{ layers []document.Layer }

func (p testPage) Name() string             { return "page" }
func (p testPage) Layers() []document.Layer { return p.layers }

type testLayer struct {
	name, id string
	master   bool
}

func (l testLayer) Name() string         { return l.name }
func (l testLayer) SymbolID() string     { return l.id }
func (l testLayer) IsSymbolMaster() bool { return l.master }

// twoPageDoc has "Icon/Home" (A1) on page 1 and "Icon/Back" (B2) plus a
// plain layer on page 2.
func twoPageDoc() *testDoc {
	return &testDoc{name: "Icons", pages: []document.Page{
		testPage{layers: []document.Layer{testLayer{"Icon/Home", "A1", true}}},
		testPage{layers: []document.Layer{testLayer{"Icon/Back", "B2", true}, testLayer{"Bg", "C3", false}}},
	}}
}

type testRasterizer struct {
	mu    sync.Mutex
	saved []string
}

func (r *testRasterizer) Descriptor(symbol document.Layer) (exporter.Descriptor, error) {
	return exporter.Descriptor{SymbolID: symbol.SymbolID(), Format: exporter.FormatPNG, Scale: 1, Trim: true}, nil
}

func (r *testRasterizer) Save(_ context.Context, d exporter.Descriptor, path string) error {
	r.mu.Lock()
	r.saved = append(r.saved, d.SymbolID)
	r.mu.Unlock()
	return os.WriteFile(path, []byte("png"), 0644)
}

type recorder struct {
	mu       sync.Mutex
	messages []string
	infos    []string
}

func (r *recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) Infof(f string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, fmt.Sprintf(f, a...))
}

func (r *recorder) Warnf(f string, a ...any)  {}
func (r *recorder) Errorf(f string, a ...any) {}

func (r *recorder) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.infos...)
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func exportedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	raster := &testRasterizer{}

	result, err := Run(context.Background(), Options{
		Document:   twoPageDoc(),
		Rasterizer: raster,
		PluginDir:  dir,
		ReportFile: filepath.Join(dir, "SYMBOLS.md"),
		Headless:   true,
		Logger:     rec,
		Notifier:   rec,
	})
	require.NoError(t, err)

	want := []catalog.SymbolRecord{
		{Name: "Icon/Home", SymbolID: "A1", SymbolIndex: 0},
		{Name: "Icon/Back", SymbolID: "B2", SymbolIndex: 1},
	}
	assert.Equal(t, want, result.Records)
	assert.Equal(t, "Icons", result.FileName)
	assert.True(t, result.Exported)
	assert.Equal(t, []string{"A1.png", "B2.png"}, exportedFiles(t, filepath.Join(dir, "export")))
	assert.Equal(t, []string{DoneMessage}, rec.Messages())

	got, err := catalog.ReadFile(filepath.Join(dir, "app", "webview", "symbolData.js"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	report, err := os.ReadFile(filepath.Join(dir, "SYMBOLS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "![Icon/Home](export/A1.png)")
}

func TestRunHeadlessEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	result, err := Run(context.Background(), Options{
		Document:   &testDoc{},
		Rasterizer: &testRasterizer{},
		PluginDir:  dir,
		Headless:   true,
		Notifier:   rec,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Records)

	data, err := os.ReadFile(result.DataFile)
	require.NoError(t, err)
	assert.Equal(t, "var symbolData = [];\n", string(data))

	// Zero exports still signal completion.
	assert.Equal(t, []string{DoneMessage}, rec.Messages())
}

func TestRunRequiresRasterizer(t *testing.T) {
	_, err := Run(context.Background(), Options{Document: twoPageDoc(), PluginDir: t.TempDir()})
	require.Error(t, err)
}

func navigate(t *testing.T, base, target string) presenter.NavigationResult {
	t.Helper()
	body, _ := json.Marshal(presenter.NavigationEvent{Source: base, Target: target})
	resp, err := http.Post(base+"navigate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var res presenter.NavigationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestRunPresentExportsOnSentinel(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	raster := &testRasterizer{}

	ready := make(chan string, 1)
	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := Run(context.Background(), Options{
			Document:   twoPageDoc(),
			Rasterizer: raster,
			PluginDir:  dir,
			Listen:     "127.0.0.1:0",
			Logger:     rec,
			Notifier:   rec,
			Ready:      func(url string) { ready <- url },
		})
		done <- outcome{result, err}
	}()

	var base string
	select {
	case base = <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("web view never became ready")
	}

	// The catalog is written before the view opens.
	_, err := os.Stat(filepath.Join(dir, "app", "webview", "symbolData.js"))
	require.NoError(t, err)

	for _, target := range []string{
		"http://localhost:8080/symbolexport",
		"https://localhost:8080/symbolexport/",
		strings.TrimSuffix(base, "/") + "/symbolexport",
	} {
		assert.False(t, navigate(t, base, target).Triggered, target)
	}
	assert.Empty(t, rec.Messages())
	assert.Contains(t, rec.Infos(), `Ignored navigation to "https://localhost:8080/symbolexport/"`)

	res := navigate(t, base, presenter.SentinelURL)
	assert.True(t, res.Triggered)

	var out outcome
	select {
	case out = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the export")
	}
	require.NoError(t, out.err)
	assert.True(t, out.result.Exported)
	assert.Len(t, out.result.Assets, 2)
	assert.Equal(t, []string{"A1", "B2"}, raster.saved)
	assert.Equal(t, []string{"A1.png", "B2.png"}, exportedFiles(t, filepath.Join(dir, "export")))
	assert.Equal(t, []string{DoneMessage}, rec.Messages())

	// The view is closed.
	_, err = http.Get(base + "window.json")
	assert.Error(t, err)
}

func TestRunPresentOpensBrowser(t *testing.T) {
	opened := make(chan string, 1)
	defer func(fn func(string) error) { openURL = fn }(openURL)
	openURL = func(url string) error {
		opened <- url
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), Options{
			Document:    twoPageDoc(),
			Rasterizer:  &testRasterizer{},
			PluginDir:   t.TempDir(),
			Listen:      "127.0.0.1:0",
			OpenBrowser: true,
		})
		done <- err
	}()

	var base string
	select {
	case base = <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("browser was never opened")
	}
	assert.True(t, strings.HasPrefix(base, "http://127.0.0.1:"))

	assert.True(t, navigate(t, base, presenter.SentinelURL).Triggered)
	require.NoError(t, <-done)
}

func TestRunPresentWithoutBrowser(t *testing.T) {
	defer func(fn func(string) error) { openURL = fn }(openURL)
	openURL = func(url string) error {
		t.Errorf("browser opened at %s", url)
		return nil
	}

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), Options{
			Document:   twoPageDoc(),
			Rasterizer: &testRasterizer{},
			PluginDir:  t.TempDir(),
			Listen:     "127.0.0.1:0",
			Ready:      func(url string) { ready <- url },
		})
		done <- err
	}()

	base := <-ready
	assert.True(t, navigate(t, base, presenter.SentinelURL).Triggered)
	require.NoError(t, <-done)
}

func TestRunPresentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, Options{
		Document:   twoPageDoc(),
		Rasterizer: &testRasterizer{},
		PluginDir:  t.TempDir(),
		Listen:     "127.0.0.1:0",
		Notifier:   rec,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Messages())
}

func TestRunFigma(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/ABC123":
			w.Write([]byte(`{"name":"Icons","document":{"id":"0:0","type":"DOCUMENT","children":[
				{"id":"0:1","name":"Page 1","type":"CANVAS","children":[{"id":"1:1","name":"Icon/Home","type":"COMPONENT"}]},
				{"id":"0:2","name":"Page 2","type":"CANVAS","children":[
					{"id":"2:1","name":"Icon/Back","type":"COMPONENT"},
					{"id":"2:2","name":"Note","type":"TEXT"}
				]}
			]}}`))
		case r.URL.Path == "/images/ABC123":
			id := r.URL.Query().Get("ids")
			w.Write([]byte(`{"images":{"` + id + `":"` + srv.URL + `/cdn/` + id + `"}}`))
		case strings.HasPrefix(r.URL.Path, "/cdn/"):
			w.Write([]byte("png"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	result, err := Run(context.Background(), Options{
		AccessToken: "t",
		FileURL:     "https://www.figma.com/design/ABC123/Icons",
		APIBaseURL:  srv.URL,
		PluginDir:   dir,
		Headless:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Icons", result.FileName)
	assert.Equal(t, []catalog.SymbolRecord{
		{Name: "Icon/Home", SymbolID: "1:1", SymbolIndex: 0},
		{Name: "Icon/Back", SymbolID: "2:1", SymbolIndex: 1},
	}, result.Records)
	assert.Equal(t, []string{"1:1.png", "2:1.png"}, exportedFiles(t, filepath.Join(dir, "export")))
}

func TestRunInvalidURL(t *testing.T) {
	_, err := Run(context.Background(), Options{FileURL: "https://example.com/x", PluginDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract file key")
}
