package providers

import (
	"github.com/samber/do/v2"

	"github.com/readlog/readlog-server/internal/catalog"
	"github.com/readlog/readlog-server/internal/config"
	"github.com/readlog/readlog-server/internal/llm"
	"github.com/readlog/readlog-server/internal/logger"
)

// LLMClientHandle wraps the text generation client with shutdown capability.
type LLMClientHandle struct {
	*llm.Client
}

// Shutdown implements do.Shutdownable.
func (h *LLMClientHandle) Shutdown() error {
	return h.Close()
}

// ProvideLLMClient provides the text generation client.
func ProvideLLMClient(i do.Injector) (*LLMClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := llm.NewClient(llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		MaxRetries: cfg.LLM.MaxRetries,
		Timeout:    cfg.LLM.Timeout,
	}, log.Component("llm"))

	if cfg.LLM.APIKey == "" {
		log.Warn("LLM API key not set - extraction, classification and generated descriptions will fail")
	}

	return &LLMClientHandle{Client: client}, nil
}

// ProvideCatalogClient provides the library catalog search client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.BookCategory, log.Component("catalog")), nil
}
