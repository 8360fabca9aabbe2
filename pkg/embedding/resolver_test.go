package embedding

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type stubProvider struct {
	vec   []float32
	err   error
	calls int64
}

func (s *stubProvider) Generate(text, taskType string) (*EmbeddingResponse, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: s.vec}}, nil
}

func TestResolverPicksFirstWorkingCandidate(t *testing.T) {
	broken := &stubProvider{err: errors.New("unavailable")}
	working := &stubProvider{vec: []float32{1, 2, 3}}
	never := &stubProvider{vec: []float32{9, 9, 9}}

	r := NewFallbackResolver(broken, working, never)

	resp, err := r.Generate("some text", TaskTypeDocument)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(resp.Embedding.Values) != 3 {
		t.Errorf("got %d values", len(resp.Embedding.Values))
	}
	if atomic.LoadInt64(&never.calls) != 0 {
		t.Error("candidates after the winner must not be probed")
	}
}

func TestResolverCachesResolution(t *testing.T) {
	broken := &stubProvider{err: errors.New("unavailable")}
	working := &stubProvider{vec: []float32{1}}

	r := NewFallbackResolver(broken, working)

	for i := 0; i < 3; i++ {
		if _, err := r.Generate("text", TaskTypeQuery); err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
	}

	// One probe, then one real call per Generate
	if got := atomic.LoadInt64(&broken.calls); got != 1 {
		t.Errorf("broken candidate probed %d times, want 1", got)
	}
}

func TestResolverAllCandidatesFail(t *testing.T) {
	r := NewFallbackResolver(
		&stubProvider{err: errors.New("down")},
		&stubProvider{vec: nil}, // answers but returns no vectors
	)

	if _, err := r.Generate("text", TaskTypeDocument); err == nil {
		t.Error("Generate() should fail when no candidate works")
	}
}

func TestResolverConcurrentFirstUse(t *testing.T) {
	working := &stubProvider{vec: []float32{1, 2}}
	r := NewFallbackResolver(working)

	const goroutines = 16
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.Generate("text", TaskTypeDocument)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", i, err)
		}
	}
	// goroutines real calls plus a single shared probe
	if got := atomic.LoadInt64(&working.calls); got != goroutines+1 {
		t.Errorf("provider called %d times, want %d", got, goroutines+1)
	}
}
