// Package vocabulary loads the controlled concept vocabulary and its term descriptions,
// and keeps them current when the asset files change on disk.
package vocabulary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Vocabulary is an immutable snapshot of the controlled terms and their descriptions.
type Vocabulary struct {
	terms        []string
	index        map[string]bool
	descriptions map[string]string
}

// New builds a vocabulary from terms and descriptions. Blank and duplicate terms are dropped.
func New(terms []string, descriptions map[string]string) *Vocabulary {
	v := &Vocabulary{
		terms:        make([]string, 0, len(terms)),
		index:        make(map[string]bool, len(terms)),
		descriptions: make(map[string]string, len(descriptions)),
	}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" || v.index[t] {
			continue
		}
		v.index[t] = true
		v.terms = append(v.terms, t)
	}
	for k, d := range descriptions {
		v.descriptions[k] = d
	}
	return v
}

// Terms returns the terms in asset order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Size returns the number of terms.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Contains reports whether term is in the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	return v.index[term]
}

// Description returns the static description of term, if one exists.
func (v *Vocabulary) Description(term string) (string, bool) {
	d, ok := v.descriptions[term]
	return d, ok && d != ""
}

// Load reads the vocabulary array and, when descriptionsPath is set, the description map.
// A missing descriptions file yields an empty map; a missing vocabulary file is an error.
func Load(path, descriptionsPath string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- configured asset path
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	descriptions := map[string]string{}
	if descriptionsPath != "" {
		raw, err := os.ReadFile(descriptionsPath) //#nosec G304 -- configured asset path
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read descriptions: %w", err)
		default:
			if err := json.Unmarshal(raw, &descriptions); err != nil {
				return nil, fmt.Errorf("parse descriptions %s: %w", descriptionsPath, err)
			}
		}
	}

	v := New(terms, descriptions)
	if v.Size() == 0 {
		return nil, fmt.Errorf("vocabulary %s has no terms", path)
	}
	return v, nil
}

// Holder hands out the current vocabulary snapshot. Reloads swap the snapshot atomically.
type Holder struct {
	mu      sync.RWMutex
	current *Vocabulary
}

// NewHolder creates a holder seeded with v.
func NewHolder(v *Vocabulary) *Holder {
	return &Holder{current: v}
}

// Current returns the active snapshot.
func (h *Holder) Current() *Vocabulary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set replaces the active snapshot.
func (h *Holder) Set(v *Vocabulary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = v
}
