package implementation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// openDryRunDB builds SQL without a database and captures the final statement.
func openDryRunDB(t *testing.T, captured *string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	capture := func(tx *gorm.DB) {
		if sql := tx.Statement.SQL.String(); sql != "" {
			*captured = sql
		}
	}
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", capture)
	if err != nil {
		t.Fatalf("register capture callback: %v", err)
	}
	// Scan goes through Rows(), which runs the row callback chain, not query.
	err = db.Callback().Row().After("gorm:row").Register("capture_row_sql", capture)
	if err != nil {
		t.Fatalf("register row capture callback: %v", err)
	}
	return db
}

func TestSearchSimilarRanksAndFiltersInSQL(t *testing.T) {
	var captured string
	db := openDryRunDB(t, &captured)
	repo := NewDocumentEmbeddingRepository(db)

	// Scan calls Rows(), which always errors under DryRun; the SQL is still
	// built and captured by the callback before the error surfaces.
	_, err := repo.SearchSimilarWithScore(context.Background(), []float32{0.1, 0.2, 0.3}, 5, uuid.New(), 0.35)
	if err != nil && !errors.Is(err, gorm.ErrDryRunModeUnsupported) {
		t.Fatalf("SearchSimilarWithScore: %v", err)
	}

	if !strings.Contains(captured, "ORDER BY similarity DESC") {
		t.Errorf("similarity search must order by score so LIMIT keeps the best rows, got: %q", captured)
	}
	if !strings.Contains(captured, "1 - (embedding_value <=> ?) AS similarity") {
		t.Errorf("similarity must be computed in SQL, got: %q", captured)
	}
	if !strings.Contains(captured, "1 - (embedding_value <=> ?) >= ?") {
		t.Errorf("threshold must be applied in SQL before LIMIT, got: %q", captured)
	}
	if !strings.Contains(captured, "JOIN documents ON documents.id = document_embeddings.document_id") {
		t.Errorf("results must be scoped through the owning document, got: %q", captured)
	}
	if !strings.Contains(captured, "LIMIT") {
		t.Errorf("result size must be capped, got: %q", captured)
	}
}
