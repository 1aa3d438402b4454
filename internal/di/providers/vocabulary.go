package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/readlog/readlog-server/internal/config"
	"github.com/readlog/readlog-server/internal/logger"
	"github.com/readlog/readlog-server/internal/vocabulary"
)

// VocabularyHandle holds the live vocabulary and, when enabled, the watcher that reloads it.
type VocabularyHandle struct {
	*vocabulary.Holder
	watcher *vocabulary.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *VocabularyHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	return h.watcher.Close()
}

// ProvideVocabulary loads the controlled vocabulary. A missing or empty vocabulary file is fatal.
func ProvideVocabulary(i do.Injector) (*VocabularyHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	v, err := vocabulary.Load(cfg.Vocabulary.Path, cfg.Vocabulary.DescriptionsPath)
	if err != nil {
		return nil, err
	}
	holder := vocabulary.NewHolder(v)

	log.Info("Vocabulary loaded", "path", cfg.Vocabulary.Path, "terms", v.Size())

	if !cfg.Vocabulary.Watch {
		return &VocabularyHandle{Holder: holder}, nil
	}

	w, err := vocabulary.NewWatcher(holder, cfg.Vocabulary.Path, cfg.Vocabulary.DescriptionsPath, 0, log.Component("vocabulary"))
	if err != nil {
		return nil, err
	}
	w.Start(context.Background())

	log.Info("Vocabulary watcher started")

	return &VocabularyHandle{Holder: holder, watcher: w}, nil
}
