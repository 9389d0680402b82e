// Package web serves the first-boot wizard and the two companion applets on a
// loopback HTTP server.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"etsetup/internal/catalog"
	"etsetup/internal/config"
	"etsetup/internal/download"
	"etsetup/internal/i18n"
	"etsetup/internal/netcheck"
	"etsetup/internal/storage"
)

//go:embed templates/*.html
var tmplFS embed.FS

//go:embed static/style.css
var styleCSS string

// Server carries the wizard's dependencies. Per-operator state lives in the
// request's Session, never here.
type Server struct {
	cfg         *config.Config
	settings    *config.Settings
	fetcher     *catalog.Fetcher
	sessions    *sessionStore
	tmpl        *template.Template
	defaultLang string

	// transferLog, when set, receives curl's stderr for the debug watcher.
	transferLog string
	// echo mirrors per-item download results to the console.
	echo bool

	quitOnce sync.Once
	quitCh   chan struct{}

	// Probes and the batch runner, swapped out in tests.
	online         func() bool
	listCandidates func(mediaRoot string) []storage.Candidate
	checkWritable  func(path string) bool
	runBatch       func(kind string, batch *download.Batch, opts download.Options)
}

// Options tunes server construction.
type Options struct {
	// TransferLog enables the debug transfer log at the given path.
	TransferLog string
	// Echo prints per-item download results to the console, for debug runs.
	Echo bool
}

// New builds a Server for the given configuration.
func New(cfg *config.Config, settings *config.Settings, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(tmplFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Server{
		cfg:            cfg,
		settings:       settings,
		fetcher:        catalog.NewFetcher(settings.Downloads.FetchTimeout.Std()),
		sessions:       newSessionStore(),
		tmpl:           tmpl,
		defaultLang:    i18n.DefaultLang,
		transferLog:    opts.TransferLog,
		echo:           opts.Echo,
		quitCh:         make(chan struct{}),
		online:         netcheck.Online,
		listCandidates: storage.ListCandidates,
		checkWritable:  storage.CheckWritable,
		runBatch:       runBatch,
	}, nil
}

func runBatch(kind string, batch *download.Batch, opts download.Options) {
	if err := batch.Run(context.Background(), opts); err != nil {
		slog.Error("download batch failed", "kind", kind, "error", err)
	}
}

// Quit asks the server to shut down. Safe to call more than once.
func (srv *Server) Quit() {
	srv.quitOnce.Do(func() { close(srv.quitCh) })
}

// Done is closed once Quit has been requested.
func (srv *Server) Done() <-chan struct{} {
	return srv.quitCh
}

// WizardMux routes the full first-boot flow.
func (srv *Server) WizardMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", withLogging(srv.handleWelcome))
	mux.HandleFunc("GET /lang/{code}", withLogging(srv.handleSetLanguage))
	mux.HandleFunc("GET /user", withLogging(srv.handleUserForm))
	mux.HandleFunc("POST /user", withLogging(srv.handleUserSave))
	mux.HandleFunc("GET /radio", withLogging(srv.handleRadioList))
	mux.HandleFunc("POST /radio", withLogging(srv.handleRadioSelect))
	mux.HandleFunc("GET /radio/settings", withLogging(srv.handleRadioSettings))
	mux.HandleFunc("GET /internet", withLogging(srv.handleInternet))
	mux.HandleFunc("GET /drive", withLogging(srv.handleDrive))
	mux.HandleFunc("POST /drive", withLogging(srv.handleDriveSelect))
	mux.HandleFunc("GET /regions", withLogging(srv.handleRegions))
	mux.HandleFunc("GET /archives", withLogging(srv.handleArchives))
	mux.HandleFunc("GET /download/{kind}", withLogging(srv.handleDownloadPage))
	mux.HandleFunc("GET /complete", withLogging(srv.handleComplete))

	mux.HandleFunc("GET /api/drives", withLogging(srv.apiDrives))
	mux.HandleFunc("GET /api/drive/check", withLogging(srv.apiDriveCheck))
	mux.HandleFunc("GET /api/regions/{country}", withLogging(srv.apiRegions))
	mux.HandleFunc("GET /api/archives", withLogging(srv.apiArchives))
	mux.HandleFunc("POST /api/select/{kind}", withLogging(srv.apiSelect))
	mux.HandleFunc("POST /api/download/start", withLogging(srv.apiDownloadStart))
	mux.HandleFunc("GET /api/download/status", withLogging(srv.apiDownloadStatus))
	mux.HandleFunc("POST /api/quit", withLogging(srv.apiQuit))
	mux.HandleFunc("GET /ws/progress", srv.wsProgress)

	return mux
}

// UserMux routes the standalone operator identity applet.
func (srv *Server) UserMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", withLogging(srv.handleUserApplet))
	mux.HandleFunc("POST /save", withLogging(srv.apiUserSave))
	mux.HandleFunc("POST /set-language", withLogging(srv.apiSetLanguage))
	mux.HandleFunc("POST /api/quit", withLogging(srv.apiQuit))
	return mux
}

// RadioMux routes the standalone radio selection applet.
func (srv *Server) RadioMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", withLogging(srv.handleRadioApplet))
	mux.HandleFunc("POST /select", withLogging(srv.apiRadioSelect))
	mux.HandleFunc("GET /api/radios", withLogging(srv.apiRadios))
	mux.HandleFunc("POST /api/quit", withLogging(srv.apiQuit))
	return mux
}

// Run serves mux on addr until Quit is called or the listener fails.
func (srv *Server) Run(addr string, mux *http.ServeMux) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-srv.quitCh:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

// page is the data every template gets, embedded in per-page structs.
type page struct {
	CSS  template.CSS
	Lang string
	// Step is the wizard step shown in the header, 0 for pages outside the
	// numbered flow.
	Step  int
	Steps int
}

func newPage(lang string, step int) page {
	return page{
		CSS:   template.CSS(styleCSS),
		Lang:  lang,
		Step:  step,
		Steps: 8,
	}
}

// T translates a key for the page's language. Called from templates.
func (p page) T(key string) string {
	return i18n.T(p.Lang, key)
}

func (srv *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := srv.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}
