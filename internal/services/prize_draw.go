package services

import (
	"context"
	"fmt"

	"classlottery/internal/models"

	"github.com/google/logger"
)

// PrizeBatchResult is the outcome of DrawPrizes.
type PrizeBatchResult struct {
	BatchID string               `json:"batchId"`
	Results []models.PrizeResult `json:"results"`
}

// DrawPrizes draws every tier in order from the filtered roster. A student
// wins at most once per batch: winners are removed from the pool before the
// next tier is sampled. A tier that cannot be filled gets a short winner list.
func (s *LotteryService) DrawPrizes(ctx context.Context, tiers []models.PrizeTier, filter DrawFilter, sessionID string) (*PrizeBatchResult, error) {
	if len(tiers) == 0 {
		return nil, validationError("奖项列表不能为空")
	}
	for _, t := range tiers {
		if t.PrizeName == "" || t.WinnerCount < 1 {
			return nil, validationError("奖项名称不能为空且中奖人数必须大于 0")
		}
	}

	pool, err := s.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	batchID := s.batchID()
	won := make(map[int64]bool)
	results := make([]models.PrizeResult, 0, len(tiers))

	for _, tier := range tiers {
		winners := drawTier(s.rng, pool, tier.WinnerCount, filter, won)
		for _, w := range winners {
			won[w.ID] = true
		}

		record := &models.PrizeDrawRecord{
			PrizeName:   tier.PrizeName,
			Winners:     winners,
			WinnerCount: len(winners),
			DrawTime:    s.now(),
			SessionID:   models.StringPtr(sessionID),
			BatchID:     models.StringPtr(batchID),
		}
		if err := s.prizes.Record(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to record prize %q of batch %s: %w", tier.PrizeName, batchID, err)
		}

		result := models.PrizeResult{
			RecordID:  record.ID,
			PrizeName: tier.PrizeName,
			Requested: tier.WinnerCount,
			Winners:   winners,
		}
		if result.Short() {
			logger.Warningf("Prize %q short: want=%d got=%d", tier.PrizeName, tier.WinnerCount, len(winners))
		}
		results = append(results, result)
	}

	logger.Infof("Prize batch %s drew %d tiers, %d winners", batchID, len(tiers), len(won))
	return &PrizeBatchResult{BatchID: batchID, Results: results}, nil
}

// drawTier samples one tier from pool minus excluded. If the batch draw comes
// back short, single draws top it up until the pool is exhausted.
func drawTier(rng Randomizer, pool []models.Student, count int, filter DrawFilter, excluded map[int64]bool) []models.Student {
	winners := DrawMany(rng, excluding(pool, excluded), count, filter)
	if len(winners) >= count {
		return winners
	}

	taken := make(map[int64]bool, len(excluded)+len(winners))
	for id := range excluded {
		taken[id] = true
	}
	for _, w := range winners {
		taken[w.ID] = true
	}
	for len(winners) < count {
		extra := DrawOne(rng, excluding(pool, taken), filter)
		if extra == nil {
			break
		}
		winners = append(winners, *extra)
		taken[extra.ID] = true
	}
	return winners
}

// SavePrizeDraw stores one tier whose winners were chosen by the client.
func (s *LotteryService) SavePrizeDraw(ctx context.Context, prizeName string, winners []models.Student, sessionID string) (*models.PrizeDrawRecord, error) {
	if prizeName == "" {
		return nil, validationError("奖品名称不能为空")
	}
	if winners == nil {
		winners = []models.Student{}
	}

	record := &models.PrizeDrawRecord{
		PrizeName:   prizeName,
		Winners:     winners,
		WinnerCount: len(winners),
		DrawTime:    s.now(),
		SessionID:   models.StringPtr(sessionID),
	}
	if err := s.prizes.Record(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record prize %q: %w", prizeName, err)
	}
	return record, nil
}

// PrizeHistory returns prize records, most recent first.
func (s *LotteryService) PrizeHistory(ctx context.Context, sessionID string, limit int) ([]*models.PrizeDrawRecord, error) {
	records, err := s.prizes.List(ctx, sessionID, normalizeLimit(limit, DefaultPrizeHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list prize history: %w", err)
	}
	return records, nil
}

func (s *LotteryService) ClearPrizeHistory(ctx context.Context, sessionID string) error {
	n, err := s.prizes.Clear(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear prize history: %w", err)
	}
	logger.Infof("Cleared %d prize records, session=%q", n, sessionID)
	return nil
}

func (s *LotteryService) DeletePrizeHistory(ctx context.Context, id int64) error {
	if err := s.prizes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete prize record %d: %w", id, err)
	}
	return nil
}
