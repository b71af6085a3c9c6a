package repository

import (
	"context"
	"fmt"

	"classlottery/internal/database"
	"classlottery/internal/models"

	"github.com/jackc/pgx/v5"
)

// DrawHistoryRepository implements the draw ledger on draw_history.
type DrawHistoryRepository struct {
	db *database.DB
}

func NewDrawHistoryRepository(db *database.DB) *DrawHistoryRepository {
	return &DrawHistoryRepository{db: db}
}

const insertDrawRecord = `
	INSERT INTO draw_history
	(student_id, student_name, student_number, class, gender, draw_time, session_id, is_batch, batch_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
`

// Record stores one draw record and sets its id.
func (r *DrawHistoryRepository) Record(ctx context.Context, record *models.DrawRecord) error {
	return insertDraw(ctx, r.db.Pool, record)
}

// RecordBatch stores all records of one batch draw in one transaction.
func (r *DrawHistoryRepository) RecordBatch(ctx context.Context, records []*models.DrawRecord) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, record := range records {
			if err := insertDraw(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertDraw(ctx context.Context, q queryable, record *models.DrawRecord) error {
	err := q.QueryRow(ctx, insertDrawRecord,
		record.StudentID,
		record.StudentName,
		record.StudentNumber,
		record.Class,
		record.Gender,
		record.DrawTime,
		record.SessionID,
		record.IsBatch,
		record.BatchID,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to record draw for student %d: %w", record.StudentID, err)
	}
	return nil
}

// List returns up to limit records, newest first. An empty sessionID lists
// every session.
func (r *DrawHistoryRepository) List(ctx context.Context, sessionID string, limit int) ([]*models.DrawRecord, error) {
	query := `
		SELECT id, student_id, student_name, student_number, class, gender,
		       draw_time, session_id, is_batch, batch_id
		FROM draw_history
		WHERE ($1::text = '' OR session_id = $1)
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query draw history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.DrawRecord, 0)
	for rows.Next() {
		var h models.DrawRecord
		err := rows.Scan(
			&h.ID,
			&h.StudentID,
			&h.StudentName,
			&h.StudentNumber,
			&h.Class,
			&h.Gender,
			&h.DrawTime,
			&h.SessionID,
			&h.IsBatch,
			&h.BatchID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw record: %w", err)
		}
		records = append(records, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draw history: %w", err)
	}
	return records, nil
}

// Clear deletes the records of sessionID, or every record when it is empty.
func (r *DrawHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM draw_history WHERE ($1::text = '' OR session_id = $1)`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear draw history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one record; a missing id is not an error.
func (r *DrawHistoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM draw_history WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete draw record %d: %w", id, err)
	}
	return nil
}
