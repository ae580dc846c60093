package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/billing"
	"github.com/stridelog/stridelog/server/database"
	"github.com/stridelog/stridelog/server/localstore"
	"github.com/stridelog/stridelog/server/store"
)

var (
	//go:embed static
	static embed.FS

	//go:embed templates/*.gohtml
	templates embed.FS
)

func New(cfg Config) (*Server, error) {
	var staticFS http.FileSystem
	var t func() *template.Template
	var reloadNotifier *ReloadNotifier
	var stopDevWatcher context.CancelFunc
	if cfg.Dev {
		root, err := os.OpenRoot("server/")
		if err != nil {
			return nil, fmt.Errorf("failed to open static directory: %w", err)
		}
		staticFS = http.FS(root.FS())
		t = func() *template.Template {
			return template.Must(template.New("templates").
				Funcs(templateFuncs).
				ParseFS(root.FS(), "templates/*.gohtml"))
		}
		reloadNotifier = NewReloadNotifier()
		stopDevWatcher = startDevWatcher("server/", reloadNotifier)
	} else {
		staticFS = http.FS(static)

		st := template.Must(template.New("templates").
			Funcs(templateFuncs).
			ParseFS(templates, "templates/*.gohtml"),
		)

		t = func() *template.Template {
			return st
		}
	}

	var (
		db  store.Store
		err error
	)
	switch cfg.Database.Driver {
	case database.DriverLocal:
		db, err = localstore.New(cfg.Database.Dir)
	default:
		db, err = database.New(cfg.Database)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	s := &Server{
		Cfg:            cfg,
		DB:             db,
		Auth:           auth.New(cfg.Auth),
		Billing:        billing.New(cfg.Billing, db),
		HttpClient:     httpClient,
		StaticFS:       staticFS,
		Templates:      t,
		ReloadNotifier: reloadNotifier,
		stopDevWatcher: stopDevWatcher,
	}

	return s, nil
}

type Server struct {
	Cfg            Config
	DB             store.Store
	Auth           *auth.Auth
	Billing        *billing.Billing
	HttpClient     *http.Client
	StaticFS       http.FileSystem
	Templates      func() *template.Template
	ReloadNotifier *ReloadNotifier

	server         *http.Server
	stopDevWatcher context.CancelFunc
}

func (s *Server) Start(handler http.Handler) {
	s.server = &http.Server{
		Addr:    s.Cfg.Server.Addr,
		Handler: handler,
	}

	go s.cleanup()

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.Any("err", err))
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.stopDevWatcher != nil {
		s.stopDevWatcher()
	}
	if s.ReloadNotifier != nil {
		s.ReloadNotifier.Close()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown failed", slog.Any("err", err))
		}
	}

	if err := s.DB.Close(); err != nil {
		slog.Error("Record store close failed", slog.Any("err", err))
	}
}
