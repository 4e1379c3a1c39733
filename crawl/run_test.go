package crawl

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/gofont/goregular"

	"wfc/common"
	"wfc/config"
	"wfc/fontface"
	"wfc/provider"
	"wfc/state"
)

const (
	providerDir = "../testdata/provider"
	gstatic     = "https://fonts.gstatic.com"
)

const svgFont = `<?xml version="1.0" standalone="no"?>
<svg xmlns="http://www.w3.org/2000/svg"><defs><font id="Roboto" horiz-adv-x="1164"></font></defs></svg>`

// fakeProvider serves fixture stylesheets with font urls pointing back to
// itself and minimal valid payloads for every font file.
type fakeProvider struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	families []string
	fonts    []string
}

func newFakeProvider(t *testing.T) *fakeProvider {
	p := &fakeProvider{t: t}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) requests() (families, fonts []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.families), slices.Clone(p.fonts)
}

func (p *fakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.URL.Path == "/css" {
		p.families = append(p.families, r.URL.Query().Get("family"))
		format, err := common.ParseFontFormat(strings.TrimPrefix(r.Header.Get("User-Agent"), "agent-"))
		if err != nil {
			http.Error(w, "unknown agent", http.StatusBadRequest)
			return
		}
		data, err := os.ReadFile(filepath.Join(providerDir, "Roboto."+format.String()+".css"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write([]byte(strings.ReplaceAll(string(data), gstatic, p.srv.URL)))
		return
	}

	p.fonts = append(p.fonts, r.URL.Path)
	var payload []byte
	switch filepath.Ext(r.URL.Path) {
	case ".eot":
		payload = make([]byte, 128)
		copy(payload[34:], "LP")
	case ".woff":
		payload = append([]byte("wOFF\x00\x01\x00\x00"), make([]byte, 32)...)
	case ".woff2":
		payload = append([]byte("wOF2\x00\x01\x00\x00"), make([]byte, 32)...)
	case ".ttf":
		payload = goregular.TTF
	case ".svg":
		payload = []byte(svgFont)
	default:
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(payload)
}

func setupTestEnv(t *testing.T, providerURL string) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Provider.URL = providerURL + "/css"
	cfg.Provider.UserAgents = config.UserAgentsConfig{
		Eot: "agent-eot", Woff: "agent-woff", Woff2: "agent-woff2", Svg: "agent-svg", Ttf: "agent-ttf",
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func testJob(t *testing.T, env *state.LocalEnv) *job {
	dir := t.TempDir()
	j := &job{
		family:   "Roboto",
		selector: provider.Selector{{Weight: "400"}, {Weight: "700", Italic: true}},
		fontsDir: filepath.Join(dir, "fonts", "Roboto"),
		out:      env.Cfg.Output,
	}
	j.out.CSSDir = filepath.Join(dir, "css")
	return j
}

func TestProcess(t *testing.T) {
	p := newFakeProvider(t)
	ctx, env := setupTestEnv(t, p.srv.URL)
	j := testJob(t, env)

	dest, err := process(ctx, env, j, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if dest != filepath.Join(j.out.CSSDir, "Roboto.css") {
		t.Errorf("dest = %q", dest)
	}

	families, fonts := p.requests()
	if len(families) != 5 {
		t.Fatalf("expected 5 stylesheet requests, got %d", len(families))
	}
	for _, f := range families {
		if f != "Roboto:400,700italic" {
			t.Errorf("family query = %q", f)
		}
	}
	if len(fonts) != 12 {
		t.Errorf("expected 12 font downloads, got %d", len(fonts))
	}

	entries, err := os.ReadDir(j.fontsDir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	for _, want := range []string{
		"Roboto-Regular.eot", "Roboto-Regular.woff", "Roboto-Regular.svg", "Roboto-Regular.ttf",
		"Roboto-BoldItalic.eot", "Roboto-Regular.latin.woff2", "Roboto-BoldItalic.cyrillic.woff2",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("font file %s is missing, have %v", want, names)
		}
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if n := strings.Count(out, "@font-face"); n != 6 {
		t.Errorf("expected 6 font faces, got %d", n)
	}
	if strings.Contains(out, p.srv.URL) {
		t.Error("stylesheet must reference local files only")
	}
	if !strings.Contains(out, "Roboto-Regular.latin.woff2') format('woff2')") {
		t.Errorf("range split source missing:\n%s", out)
	}
}

func TestProcess_URLPrefix(t *testing.T) {
	p := newFakeProvider(t)
	ctx, env := setupTestEnv(t, p.srv.URL)
	j := testJob(t, env)
	j.out.URLPrefix = "https://cdn.example.com/fonts/roboto"

	dest, err := process(ctx, env, j, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "url('https://cdn.example.com/fonts/roboto/Roboto-BoldItalic.ttf') format('truetype')") {
		t.Errorf("prefixed url missing:\n%s", data)
	}
}

func TestProcess_NoOverwrite(t *testing.T) {
	p := newFakeProvider(t)
	ctx, env := setupTestEnv(t, p.srv.URL)
	j := testJob(t, env)
	j.out.Overwrite = false

	if err := os.MkdirAll(j.out.CSSDir, 0755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(j.out.CSSDir, "Roboto.css")
	if err := os.WriteFile(existing, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := process(ctx, env, j, env.Log); err == nil {
		t.Fatal("expected error when stylesheet exists")
	}
	if data, _ := os.ReadFile(existing); string(data) != "keep" {
		t.Error("existing stylesheet must not be replaced")
	}
}

func TestProcess_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	ctx, env := setupTestEnv(t, srv.URL)
	j := testJob(t, env)

	_, err := process(ctx, env, j, env.Log)
	var se *provider.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusGone {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if _, err := os.Stat(j.fontsDir); !os.IsNotExist(err) {
		t.Error("nothing should be downloaded")
	}
}

func TestProcess_Report(t *testing.T) {
	p := newFakeProvider(t)
	ctx, env := setupTestEnv(t, p.srv.URL)
	j := testJob(t, env)

	rptName := filepath.Join(t.TempDir(), "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: rptName}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	env.Rpt = rpt

	if _, err := process(ctx, env, j, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(rptName)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	for _, want := range []string{
		"MANIFEST", "provider/Roboto.eot.css", "provider/Roboto.woff2.css", "rules.txt", "result/Roboto.css",
		"fonts/Roboto-Regular.ttf",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("report entry %s is missing, have %v", want, names)
		}
	}
}

func TestCollect_DumpRules(t *testing.T) {
	p := newFakeProvider(t)
	ctx, env := setupTestEnv(t, p.srv.URL)
	j := testJob(t, env)
	client, err := provider.NewClient(&env.Cfg.Provider, env.Log)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := collect(ctx, env, client, j, common.FontFormatWoff2, env.Log)
	if err != nil {
		t.Fatalf("collect() error = %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}

	dump := dumpRules(fontface.Consolidate(recs))
	for _, want := range []string{
		"rule 400normalcyrillic\n",
		"rule 700italiclatin\n",
		"  local (2)\n",
		"    woff2-0: \"" + p.srv.URL,
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump does not contain %q:\n%s", want, dump)
		}
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name: "crawl",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fonts-dir"},
			&cli.StringFlag{Name: "css-dir"},
			&cli.StringFlag{Name: "weights"},
			&cli.StringFlag{Name: "url-prefix"},
		},
		Action: Run,
	}
}

func TestRun(t *testing.T) {
	p := newFakeProvider(t)
	ctx, _ := setupTestEnv(t, p.srv.URL)
	dir := t.TempDir()

	args := []string{"crawl",
		"--fonts-dir", filepath.Join(dir, "f"),
		"--css-dir", filepath.Join(dir, "c"),
		"--weights", "400,700italic",
		"  Roboto "}
	if err := newCommand().Run(ctx, args); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "c", "Roboto.css")); err != nil {
		t.Errorf("stylesheet not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "f", "Roboto-Regular.woff")); err != nil {
		t.Errorf("font not created: %v", err)
	}
}

func TestRun_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"no family", []string{"crawl"}, func(err error) bool { return errors.Is(err, ErrNoFamily) }},
		{"blank family", []string{"crawl", "   "}, func(err error) bool { return errors.Is(err, ErrNoFamily) }},
		{"bad weight", []string{"crawl", "--weights", "450", "Roboto"}, func(err error) bool {
			var se *provider.SelectorError
			return errors.As(err, &se)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
			}))
			defer srv.Close()

			ctx, _ := setupTestEnv(t, srv.URL)
			err := newCommand().Run(ctx, tt.args)
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
			if n := requests.Load(); n != 0 {
				t.Errorf("no network activity expected, got %d requests", n)
			}
		})
	}
}

func verifyBuckets() *fontface.Buckets {
	return fontface.Consolidate(
		[]*fontface.Record{{
			Family: "Roboto", Weight: "400", Style: "normal", URL: "https://example.com/a.woff", Format: "woff",
			Source: common.FontFormatWoff, Name: "Roboto-Regular", LocalFile: "fonts/Roboto/Roboto-Regular.woff",
		}},
		[]*fontface.Record{{
			Family: "Roboto", Weight: "400", Style: "normal", Segment: "latin", UnicodeRange: "U+0000-00FF,U+0131",
			URL: "https://example.com/a.woff2", Format: "woff2", Source: common.FontFormatWoff2, Name: "Roboto-Regular",
			LocalFile: "fonts/Roboto/Roboto-Regular.latin.woff2",
		}},
	)
}

func TestVerify(t *testing.T) {
	log := zaptest.NewLogger(t)
	buckets := verifyBuckets()
	text, err := fontface.NewSerializer("Roboto", "").Serialize(buckets)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if err := verify(text, "Roboto.css", buckets, "Roboto", log); err != nil {
		t.Fatalf("verify() error = %v", err)
	}

	tests := []struct {
		name   string
		mangle func(string) string
		want   string
	}{
		{"label", func(s string) string { return strings.Replace(s, "/* latin */", "/* greek */", 1) }, "labeled"},
		{"no label", func(s string) string { return strings.Replace(s, "/* latin */\n", "", 1) }, "labeled"},
		{"range", func(s string) string { return strings.Replace(s, "U+0131", "U+0132", 1) }, "unicode range"},
		{"family", func(s string) string { return strings.Replace(s, "'Roboto'", "'Lato'", 1) }, "family"},
		{"count", func(s string) string { return s[:strings.Index(s, "/* latin */")] }, "font faces"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verify(tt.mangle(text), "Roboto.css", buckets, "Roboto", log)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("verify() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
