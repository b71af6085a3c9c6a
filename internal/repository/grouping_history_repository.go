package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"classlottery/internal/database"
	"classlottery/internal/models"

	"github.com/jackc/pgx/v5"
)

// GroupingHistoryRepository implements the grouping ledger on
// grouping_history, one row per group.
type GroupingHistoryRepository struct {
	db *database.DB
}

func NewGroupingHistoryRepository(db *database.DB) *GroupingHistoryRepository {
	return &GroupingHistoryRepository{db: db}
}

const groupingColumns = `g.id, g.batch_id, g.group_number, g.group_size, g.total_groups, g.members, g.group_time, g.session_id`

// RecordBatch stores every group of one batch in a single transaction, so a
// batch is either fully present or absent.
func (r *GroupingHistoryRepository) RecordBatch(ctx context.Context, records []*models.GroupingRecord) error {
	query := `
		INSERT INTO grouping_history
		(batch_id, group_number, group_size, total_groups, members, group_time, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, record := range records {
		membersJSON, err := json.Marshal(record.Members)
		if err != nil {
			return fmt.Errorf("failed to marshal members of group %d: %w", record.GroupNumber, err)
		}
		batch.Queue(query,
			record.BatchID,
			record.GroupNumber,
			record.GroupSize,
			record.TotalGroups,
			membersJSON,
			record.GroupTime,
			record.SessionID,
		)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for _, record := range records {
			if err := results.QueryRow().Scan(&record.ID); err != nil {
				results.Close()
				return fmt.Errorf("failed to record group %d of batch %s: %w", record.GroupNumber, record.BatchID, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close grouping batch: %w", err)
		}
		return nil
	})
}

// ListRecentBatches returns all groups of the limit most recent batches,
// newest batch first and groups in order within a batch.
func (r *GroupingHistoryRepository) ListRecentBatches(ctx context.Context, sessionID string, limit int) ([]*models.GroupingRecord, error) {
	query := `
		WITH recent AS (
			SELECT batch_id, MAX(group_time) AS batch_time, MAX(id) AS last_id
			FROM grouping_history
			WHERE ($1::text = '' OR session_id = $1)
			GROUP BY batch_id
			ORDER BY batch_time DESC, last_id DESC
			LIMIT $2
		)
		SELECT ` + groupingColumns + `
		FROM grouping_history g
		JOIN recent r ON r.batch_id = g.batch_id
		ORDER BY r.batch_time DESC, r.last_id DESC, g.group_number ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouping history: %w", err)
	}
	return collectGroupingRecords(rows)
}

// GetByBatchID returns the groups of one batch in group order.
func (r *GroupingHistoryRepository) GetByBatchID(ctx context.Context, batchID string) ([]*models.GroupingRecord, error) {
	query := `
		SELECT ` + groupingColumns + `
		FROM grouping_history g
		WHERE g.batch_id = $1
		ORDER BY g.group_number
	`

	rows, err := r.db.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouping batch %s: %w", batchID, err)
	}
	return collectGroupingRecords(rows)
}

// Clear deletes the groups of sessionID, or every group when it is empty.
func (r *GroupingHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM grouping_history WHERE ($1::text = '' OR session_id = $1)`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear grouping history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBatch removes every group of batchID; an unknown batch is not an
// error.
func (r *GroupingHistoryRepository) DeleteBatch(ctx context.Context, batchID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM grouping_history WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("failed to delete grouping batch %s: %w", batchID, err)
	}
	return nil
}

func collectGroupingRecords(rows pgx.Rows) ([]*models.GroupingRecord, error) {
	defer rows.Close()

	records := make([]*models.GroupingRecord, 0)
	for rows.Next() {
		var g models.GroupingRecord
		var membersJSON []byte
		err := rows.Scan(
			&g.ID,
			&g.BatchID,
			&g.GroupNumber,
			&g.GroupSize,
			&g.TotalGroups,
			&membersJSON,
			&g.GroupTime,
			&g.SessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grouping record: %w", err)
		}
		if err := json.Unmarshal(membersJSON, &g.Members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members of group %d: %w", g.ID, err)
		}
		records = append(records, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grouping history: %w", err)
	}
	return records, nil
}
