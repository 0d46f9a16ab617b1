package docsearch

import (
	"context"
	"fmt"
	"strings"

	"customer-inquiry-be/internal/repository/contract"
	"customer-inquiry-be/pkg/embedding"

	"github.com/google/uuid"
)

// Hit is one retrieved chunk with its owning document metadata.
type Hit struct {
	DocumentId uuid.UUID
	Title      string
	Snippet    string
	Score      float64
}

// Retriever finds document chunks relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, terms []string, limit int, userId uuid.UUID) ([]Hit, error)
}

// VectorRetriever embeds the query and searches the pgvector index,
// scoped to the user's documents.
type VectorRetriever struct {
	embedder   embedding.EmbeddingProvider
	embeddings contract.DocumentEmbeddingRepository
	threshold  float64
}

func NewVectorRetriever(embedder embedding.EmbeddingProvider, embeddings contract.DocumentEmbeddingRepository, threshold float64) *VectorRetriever {
	return &VectorRetriever{
		embedder:   embedder,
		embeddings: embeddings,
		threshold:  threshold,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, terms []string, limit int, userId uuid.UUID) ([]Hit, error) {
	// Expanded terms sharpen the embedding for short queries.
	searchText := query
	if len(terms) > 0 {
		searchText = query + " " + strings.Join(terms, " ")
	}

	embedded, err := r.embedder.Generate(searchText, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := r.embeddings.SearchSimilarWithScore(ctx, embedded.Embedding.Values, limit, userId, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, Hit{
			DocumentId: s.Embedding.DocumentId,
			Title:      s.Title,
			Snippet:    s.Embedding.ChunkText,
			Score:      s.Similarity,
		})
	}
	return hits, nil
}
