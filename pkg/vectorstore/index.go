package vectorstore

import (
	"fmt"

	"github.com/coder/hnsw"
)

// Index is one session's semantic index: an HNSW graph over chunk
// embeddings plus the chunk texts the graph keys map back to. Contents are
// immutable once built.
type Index struct {
	graph  *hnsw.Graph[int]
	chunks []string
	dims   int
}

func newGraph() *hnsw.Graph[int] {
	g := hnsw.NewGraph[int]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 20
	g.Ml = 0.25
	return g
}

// Build constructs an index from parallel slices of chunk embeddings and
// chunk texts. Graph keys are chunk positions.
func Build(vectors [][]float32, chunks []string) (*Index, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors to index")
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("vectors and chunks length mismatch: %d vs %d", len(vectors), len(chunks))
	}

	dims := len(vectors[0])
	graph := newGraph()
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, fmt.Errorf("vector %d has %d dimensions, expected %d", i, len(vec), dims)
		}
		graph.Add(hnsw.MakeNode(i, vec))
	}

	return &Index{
		graph:  graph,
		chunks: chunks,
		dims:   dims,
	}, nil
}

// Search returns up to k chunk texts nearest to the query vector, closest
// first. Keys pointing outside the chunk list are skipped; they would mean
// the graph and its metadata went out of sync on disk.
func (ix *Index) Search(query []float32, k int) ([]string, error) {
	if len(query) != ix.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d", len(query), ix.dims)
	}

	nodes := ix.graph.Search(query, k)

	results := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.Key < 0 || node.Key >= len(ix.chunks) {
			continue
		}
		results = append(results, ix.chunks[node.Key])
	}
	return results, nil
}

func (ix *Index) ChunkCount() int {
	return len(ix.chunks)
}

func (ix *Index) Dimensions() int {
	return ix.dims
}
