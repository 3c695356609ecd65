// Package embedding loads one or more sentence-embedding models and
// produces fixed-length vectors for text, tagged by model key and
// dimension.
//
// Grounded on the teacher's internal/embeddings/ollama.go (one model, one
// HTTP transport) generalized to a registry of independently configured
// models, per original_source/nexus/agents/memnon/utils/embedding_manager.py's
// per-model is_active flag and local-path-then-remote-path load order.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"memnon/internal/config"
	"memnon/internal/domain"
)

// defaultModels is the hardcoded last-resort set loaded when zero models
// are configured, carried forward from embedding_manager.py.
var defaultModels = map[string]config.ModelConfig{
	"bge-large": {RemotePath: "BAAI/bge-large-en", Dimensions: 1024, Weight: 0.5, IsActive: true},
	"e5-large":  {RemotePath: "intfloat/e5-large-v2", Dimensions: 1024, Weight: 0.5, IsActive: true},
}

type loadedModel struct {
	key        string
	host       string
	name       string
	dimensions int
	weight     float64
}

// Service is the multi-model embedding registry. Safe for concurrent use;
// models are loaded once at construction and never mutated afterward.
type Service struct {
	transport *httpTransport
	models    map[string]loadedModel

	mu    sync.Mutex
	cache *lru.Cache[string, []float32]
}

// New builds a Service from configured models, applying the
// local-path-then-remote-path-then-hardcoded-default load order. A model
// is only registered (and therefore only appears in AvailableModels) when
// is_active is true and it has a usable host.
func New(cfg map[string]config.ModelConfig, timeout time.Duration, cacheSize int) *Service {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, _ := lru.New[string, []float32](cacheSize)

	models := make(map[string]loadedModel)
	source := cfg
	if len(source) == 0 {
		log.Warn().Msg("no embedding models configured, falling back to hardcoded defaults")
		source = defaultModels
	}

	for key, mc := range source {
		if !mc.IsActive {
			continue
		}
		host := mc.LocalPath
		name := mc.LocalPath
		if host == "" {
			host = mc.RemotePath
			name = mc.RemotePath
		}
		if host == "" {
			log.Warn().Str("model", key).Msg("embedding model has neither local_path nor remote_path, skipping")
			continue
		}
		models[key] = loadedModel{
			key:        key,
			host:       host,
			name:       name,
			dimensions: mc.Dimensions,
			weight:     mc.Weight,
		}
	}

	if len(models) == 0 {
		log.Warn().Msg("zero embedding models loaded, falling back to hardcoded defaults")
		for key, mc := range defaultModels {
			models[key] = loadedModel{key: key, host: mc.RemotePath, name: mc.RemotePath, dimensions: mc.Dimensions, weight: mc.Weight}
		}
	}

	return &Service{
		transport: newHTTPTransport(timeout),
		models:    models,
		cache:     cache,
	}
}

// AvailableModels returns the keys of active, successfully-loaded models.
func (s *Service) AvailableModels() []string {
	out := make([]string, 0, len(s.models))
	for key := range s.models {
		out = append(out, key)
	}
	return out
}

// Weight returns the configured weight for a model, or 0 if unknown.
func (s *Service) Weight(modelKey string) float64 {
	return s.models[modelKey].weight
}

// Dimensions returns the configured dimension for a model, or 0 if unknown.
func (s *Service) Dimensions(modelKey string) int {
	return s.models[modelKey].dimensions
}

// Embed produces the vector for text under modelKey. Fails with
// ErrModelUnavailable if the key is unknown/inactive, ErrEmptyInput if
// text is empty/whitespace, and ErrEmbeddingFailed for any other failure
// (transport error, dimension mismatch).
func (s *Service) Embed(ctx context.Context, text, modelKey string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	m, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("%w: model %q", domain.ErrModelUnavailable, modelKey)
	}

	cacheKey := modelKey + "\x00" + text
	s.mu.Lock()
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	vec, err := s.transport.embed(ctx, m.host, m.name, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if m.dimensions > 0 && len(vec) != m.dimensions {
		return nil, fmt.Errorf("%w: model %q expected dimension %d, got %d", domain.ErrEmbeddingFailed, modelKey, m.dimensions, len(vec))
	}

	s.mu.Lock()
	s.cache.Add(cacheKey, vec)
	s.mu.Unlock()

	return vec, nil
}

// EmbedBatch embeds texts under modelKey, silently dropping empty/
// whitespace-only entries and preserving the relative order of the kept
// inputs.
func (s *Service) EmbedBatch(ctx context.Context, texts []string, modelKey string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		vec, err := s.Embed(ctx, text, modelKey)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}
