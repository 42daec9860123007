package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"questboard/internal/handler"
	"questboard/internal/middleware"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd)
		},
	}
}

// NewRouter wires middleware, the health check and every API route.
func NewRouter(h *handler.ItemHandler, log *slog.Logger, corsOrigins []string, opts ...func(chi.Router)) (*chi.Mux, huma.API) {
	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(corsOrigins))
	for _, opt := range opts {
		opt(router)
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	config := huma.DefaultConfig("Questboard API", "1.0.0")
	config.Info.Description = "Habits, tasks and projects with derived progress and drag reordering."
	api := humachi.New(router, config)
	h.RegisterRoutes(api)
	return router, api
}

func (a *App) serve(cmd *cobra.Command) error {
	st, repo, err := a.loadStore(cmd)
	if err != nil {
		return err
	}
	defer repo.Close()

	h := handler.NewItemHandler(st, a.sensors(), a.log)
	router, _ := NewRouter(h, a.log, a.cfg.Server.CORSOrigins, func(r chi.Router) {
		r.Use(chimw.Timeout(a.cfg.Server.RequestTimeout))
	})

	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: router}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Info("server starting", slog.String("addr", srv.Addr), slog.String("docs", "/docs"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("server stopped")
	return nil
}
