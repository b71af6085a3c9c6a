package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"classlottery/internal/database"
	"classlottery/internal/models"
)

// PrizeHistoryRepository implements the prize ledger on prize_draw_history.
type PrizeHistoryRepository struct {
	db *database.DB
}

func NewPrizeHistoryRepository(db *database.DB) *PrizeHistoryRepository {
	return &PrizeHistoryRepository{db: db}
}

// Record stores one prize tier and sets its id. WinnerCount is always
// derived from Winners.
func (r *PrizeHistoryRepository) Record(ctx context.Context, record *models.PrizeDrawRecord) error {
	winnersJSON, err := json.Marshal(record.Winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners of %q: %w", record.PrizeName, err)
	}
	record.WinnerCount = len(record.Winners)

	query := `
		INSERT INTO prize_draw_history
		(prize_name, winners, winner_count, draw_time, session_id, batch_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = r.db.QueryRow(ctx, query,
		record.PrizeName,
		winnersJSON,
		record.WinnerCount,
		record.DrawTime,
		record.SessionID,
		record.BatchID,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to record prize %q: %w", record.PrizeName, err)
	}
	return nil
}

// List returns up to limit prize records, newest first.
func (r *PrizeHistoryRepository) List(ctx context.Context, sessionID string, limit int) ([]*models.PrizeDrawRecord, error) {
	query := `
		SELECT id, prize_name, winners, winner_count, draw_time, session_id, batch_id
		FROM prize_draw_history
		WHERE ($1::text = '' OR session_id = $1)
		ORDER BY draw_time DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prize history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.PrizeDrawRecord, 0)
	for rows.Next() {
		var p models.PrizeDrawRecord
		var winnersJSON []byte
		err := rows.Scan(
			&p.ID,
			&p.PrizeName,
			&winnersJSON,
			&p.WinnerCount,
			&p.DrawTime,
			&p.SessionID,
			&p.BatchID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize record: %w", err)
		}
		if err := json.Unmarshal(winnersJSON, &p.Winners); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winners of prize record %d: %w", p.ID, err)
		}
		records = append(records, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prize history: %w", err)
	}
	return records, nil
}

func (r *PrizeHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM prize_draw_history WHERE ($1::text = '' OR session_id = $1)`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear prize history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PrizeHistoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM prize_draw_history WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete prize record %d: %w", id, err)
	}
	return nil
}
