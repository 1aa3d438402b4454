package providers

import (
	"github.com/samber/do/v2"

	"github.com/readlog/readlog-server/internal/catalog"
	"github.com/readlog/readlog-server/internal/config"
	"github.com/readlog/readlog-server/internal/extraction"
	"github.com/readlog/readlog-server/internal/logger"
	"github.com/readlog/readlog-server/internal/service"
	"github.com/readlog/readlog-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideExtractor provides the concept extractor.
func ProvideExtractor(i do.Injector) (*extraction.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	vocab := do.MustInvoke[*VocabularyHandle](i)
	llmHandle := do.MustInvoke[*LLMClientHandle](i)

	return extraction.NewExtractor(storeHandle.Store, llmHandle.Client, vocab.Holder, cfg.Extraction.Delay, log.Component("extraction")), nil
}

// ProvideClassifier provides the discipline classifier.
func ProvideClassifier(i do.Injector) (*extraction.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	llmHandle := do.MustInvoke[*LLMClientHandle](i)

	return extraction.NewClassifier(storeHandle.Store, llmHandle.Client, cfg.Extraction.ClassifyDelay, log.Component("classifier")), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideGoalService provides the annual goal service.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGoalService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideStatsService provides the reading statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	goals := do.MustInvoke[*service.GoalService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, goals, log.Logger), nil
}

// ProvideConceptService provides the concept knowledge map service.
func ProvideConceptService(i do.Injector) (*service.ConceptService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	vocab := do.MustInvoke[*VocabularyHandle](i)
	extractor := do.MustInvoke[*extraction.Extractor](i)
	llmHandle := do.MustInvoke[*LLMClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewConceptService(storeHandle.Store, vocab.Holder, extractor, llmHandle.Client, cfg.Extraction.BatchSize, log.Logger), nil
}

// ProvideCatalogService provides the catalog search service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	client := do.MustInvoke[*catalog.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(client, log.Logger), nil
}
