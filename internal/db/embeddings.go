package db

import (
	"context"
	"fmt"

	"github.com/planbeam/storyforge/internal/embedding"
)

// FetchIssueEmbeddings reads cached embedding vectors for the given issue ids.
// Missing ids are simply absent from the returned cache; callers backfill via
// the incremental dedupe path and UpsertIssueEmbeddings.
func (db *DB) FetchIssueEmbeddings(ctx context.Context, issueIDs []string) (embedding.Cache, error) {
	cache := embedding.Cache{}
	if len(issueIDs) == 0 {
		return cache, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT issue_id, vector FROM issue_embeddings WHERE issue_id = ANY($1)`,
		issueIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issueID string
		var vector []float32
		if err := rows.Scan(&issueID, &vector); err != nil {
			return nil, fmt.Errorf("failed to scan issue embedding: %w", err)
		}
		cache[issueID] = vector
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read issue embeddings: %w", err)
	}
	return cache, nil
}

// UpsertIssueEmbeddings writes vectors into the cache table, keyed by issue id.
func (db *DB) UpsertIssueEmbeddings(ctx context.Context, model string, vectors embedding.Cache) error {
	for issueID, vector := range vectors {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO issue_embeddings (issue_id, model, vector)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (issue_id) DO UPDATE SET model = $2, vector = $3, updated_at = NOW()`,
			issueID, model, vector,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert embedding for issue %s: %w", issueID, err)
		}
	}
	return nil
}
