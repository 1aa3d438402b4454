package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/readlog/readlog-server/internal/api"
	"github.com/readlog/readlog-server/internal/config"
	"github.com/readlog/readlog-server/internal/logger"
	"github.com/readlog/readlog-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	vocab := do.MustInvoke[*VocabularyHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Book:       do.MustInvoke[*service.BookService](i),
		Category:   do.MustInvoke[*service.CategoryService](i),
		Goal:       do.MustInvoke[*service.GoalService](i),
		Stats:      do.MustInvoke[*service.StatsService](i),
		Concept:    do.MustInvoke[*service.ConceptService](i),
		Catalog:    do.MustInvoke[*service.CatalogService](i),
		Vocabulary: vocab.Holder,
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		CORSOrigins:          cfg.Server.CORSOrigins,
		LLMRequestsPerMinute: cfg.Server.LLMRequestsPerMinute,
	}, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
