// Package di provides dependency injection configuration for the readlog server and CLI.
package di

import (
	"github.com/samber/do/v2"

	"github.com/readlog/readlog-server/internal/catalog"
	"github.com/readlog/readlog-server/internal/config"
	"github.com/readlog/readlog-server/internal/di/providers"
	"github.com/readlog/readlog-server/internal/extraction"
	"github.com/readlog/readlog-server/internal/logger"
	"github.com/readlog/readlog-server/internal/service"
	"github.com/readlog/readlog-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments configuration is parsed from.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Vocabulary and external clients
	do.Provide(injector, providers.ProvideVocabulary)
	do.Provide(injector, providers.ProvideLLMClient)
	do.Provide(injector, providers.ProvideCatalogClient)

	// Extraction
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideClassifier)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideGoalService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideConceptService)
	do.Provide(injector, providers.ProvideCatalogService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Invoke failures surface as errors instead of panics so main can report them.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.VocabularyHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.LLMClientHandle](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*extraction.Extractor](injector)

	// Business services
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.GoalService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.ConceptService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
