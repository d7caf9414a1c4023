package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/planbeam/storyforge/internal/types"
)

// ListVariants returns all prompt variants in a workspace, newest first.
// Eligibility filtering (active, not archived) is the allocator's job so the
// requested-variant short circuit can still see ineligible rows.
func (db *DB) ListVariants(ctx context.Context, workspaceID uuid.UUID) ([]types.PromptVariant, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, template, active, is_default, traffic_weight, archived
		 FROM prompt_variants
		 WHERE workspace_id = $1
		 ORDER BY created_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt variants: %w", err)
	}
	defer rows.Close()

	var variants []types.PromptVariant
	for rows.Next() {
		var v types.PromptVariant
		if err := rows.Scan(&v.ID, &v.Name, &v.Template, &v.Active, &v.IsDefault, &v.TrafficWeight, &v.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan prompt variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prompt variants: %w", err)
	}
	return variants, nil
}

// ListRecentScoredRuns returns the most recent runs carrying a quality score
// for a workspace, newest first, capped at limit.
func (db *DB) ListRecentScoredRuns(ctx context.Context, workspaceID uuid.UUID, limit int) ([]types.ExperimentRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT variant_id, quality_score, started_at
		 FROM agent_runs
		 WHERE workspace_id = $1 AND variant_id IS NOT NULL AND quality_score IS NOT NULL
		 ORDER BY started_at DESC
		 LIMIT $2`,
		workspaceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []types.ExperimentRun
	for rows.Next() {
		var r types.ExperimentRun
		if err := rows.Scan(&r.VariantID, &r.QualityScore, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// ListRuns returns all runs for a workspace within the last windowDays,
// including unscored ones, for the stats engine.
func (db *DB) ListRuns(ctx context.Context, workspaceID uuid.UUID, windowDays int) ([]types.ExperimentRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT variant_id, quality_score, started_at
		 FROM agent_runs
		 WHERE workspace_id = $1 AND variant_id IS NOT NULL
		   AND started_at >= NOW() - make_interval(days => $2)
		 ORDER BY started_at DESC`,
		workspaceID, windowDays,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.ExperimentRun
	for rows.Next() {
		var r types.ExperimentRun
		if err := rows.Scan(&r.VariantID, &r.QualityScore, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
