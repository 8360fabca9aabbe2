package embedding

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// probeText is the tiny input used to test whether a candidate backend
// answers at all before trusting it with real chunks.
const probeText = "ping"

// FallbackResolver is an EmbeddingProvider that walks an ordered candidate
// list until one responds with vectors, then sticks with that backend for
// the life of the process. Concurrent first calls share a single probe run
// via singleflight instead of hammering every candidate in parallel.
type FallbackResolver struct {
	candidates []EmbeddingProvider

	mu       sync.RWMutex
	resolved EmbeddingProvider
	sf       singleflight.Group
}

func NewFallbackResolver(candidates ...EmbeddingProvider) *FallbackResolver {
	return &FallbackResolver{
		candidates: candidates,
	}
}

func (r *FallbackResolver) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	provider, err := r.resolve(taskType)
	if err != nil {
		return nil, err
	}
	return provider.Generate(text, taskType)
}

func (r *FallbackResolver) resolve(taskType string) (EmbeddingProvider, error) {
	r.mu.RLock()
	resolved := r.resolved
	r.mu.RUnlock()
	if resolved != nil {
		return resolved, nil
	}

	v, err, _ := r.sf.Do("resolve", func() (interface{}, error) {
		// Re-check: a previous flight may have finished while we queued
		r.mu.RLock()
		cached := r.resolved
		r.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		for i, candidate := range r.candidates {
			resp, probeErr := candidate.Generate(probeText, taskType)
			if probeErr != nil {
				log.Printf("[WARN] Embedding candidate %d unavailable: %v", i, probeErr)
				continue
			}
			if resp == nil || len(resp.Embedding.Values) == 0 {
				log.Printf("[WARN] Embedding candidate %d returned no vectors", i)
				continue
			}

			r.mu.Lock()
			r.resolved = candidate
			r.mu.Unlock()
			log.Printf("[INFO] Embedding backend resolved (candidate %d, dims=%d)", i, len(resp.Embedding.Values))
			return candidate, nil
		}
		return nil, fmt.Errorf("no embedding backend responded out of %d candidates", len(r.candidates))
	})
	if err != nil {
		return nil, err
	}
	return v.(EmbeddingProvider), nil
}
