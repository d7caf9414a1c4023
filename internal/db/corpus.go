package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planbeam/storyforge/internal/types"
)

// DefaultCorpusLimit caps how many recent children feed duplicate detection
// when no embedding cache covers the epic.
const DefaultCorpusLimit = 15

// ListEpicChildren returns the most recent child issues of an epic as corpus
// items for duplicate detection, newest first, capped at limit.
func (db *DB) ListEpicChildren(ctx context.Context, epicID uuid.UUID, limit int) ([]types.CorpusItem, error) {
	if limit <= 0 {
		limit = DefaultCorpusLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, acceptance_criteria
		 FROM issues
		 WHERE epic_id = $1 AND NOT archived
		 ORDER BY created_at DESC
		 LIMIT $2`,
		epicID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list epic children: %w", err)
	}
	defer rows.Close()

	var items []types.CorpusItem
	for rows.Next() {
		var item types.CorpusItem
		var id uuid.UUID
		if err := rows.Scan(&id, &item.Title, &item.AcceptanceCriteria); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		item.ID = id.String()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read issues: %w", err)
	}
	return items, nil
}
