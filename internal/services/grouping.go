package services

import (
	"context"
	"fmt"

	"classlottery/internal/models"

	"github.com/google/logger"
)

// GroupingResult is one persisted grouping batch.
type GroupingResult struct {
	BatchID string             `json:"batchId"`
	Groups  [][]models.Student `json:"groups"`
}

// GenerateGrouping shuffles the filtered roster into groups of groupSize and
// saves them as one batch.
func (s *LotteryService) GenerateGrouping(ctx context.Context, groupSize int, filter DrawFilter, sessionID string) (*GroupingResult, error) {
	if groupSize < 1 {
		return nil, validationError("每组人数必须大于 0")
	}

	pool, err := s.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	eligible := filter.Apply(pool)
	if len(eligible) == 0 {
		return nil, notFoundError("没有符合条件的学生")
	}

	return s.SaveGrouping(ctx, Group(s.rng, eligible, groupSize), groupSize, sessionID)
}

// SaveGrouping stores groups computed elsewhere. Group order becomes the
// group number.
func (s *LotteryService) SaveGrouping(ctx context.Context, groups [][]models.Student, groupSize int, sessionID string) (*GroupingResult, error) {
	if groupSize < 1 {
		return nil, validationError("每组人数必须大于 0")
	}
	if len(groups) == 0 {
		return nil, validationError("分组结果不能为空")
	}
	for _, g := range groups {
		if len(g) == 0 {
			return nil, validationError("分组不能为空组")
		}
	}

	batchID := s.batchID()
	groupTime := s.now()
	records := make([]*models.GroupingRecord, 0, len(groups))
	for i, members := range groups {
		records = append(records, &models.GroupingRecord{
			BatchID:     batchID,
			GroupNumber: i + 1,
			GroupSize:   groupSize,
			TotalGroups: len(groups),
			Members:     members,
			GroupTime:   groupTime,
			SessionID:   models.StringPtr(sessionID),
		})
	}

	if err := s.groupings.RecordBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to record grouping %s: %w", batchID, err)
	}
	logger.Infof("Saved grouping %s: %d groups of %d", batchID, len(groups), groupSize)

	return &GroupingResult{BatchID: batchID, Groups: groups}, nil
}

// GroupingHistory returns the groups of the limit most recent batches.
func (s *LotteryService) GroupingHistory(ctx context.Context, sessionID string, limit int) ([]*models.GroupingRecord, error) {
	records, err := s.groupings.ListRecentBatches(ctx, sessionID, normalizeLimit(limit, DefaultGroupingHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list grouping history: %w", err)
	}
	return records, nil
}

// GroupingBatch returns every group of one batch in group order.
func (s *LotteryService) GroupingBatch(ctx context.Context, batchID string) ([]*models.GroupingRecord, error) {
	records, err := s.groupings.GetByBatchID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get grouping %s: %w", batchID, err)
	}
	if len(records) == 0 {
		return nil, notFoundError("分组批次不存在")
	}
	return records, nil
}

func (s *LotteryService) ClearGroupingHistory(ctx context.Context, sessionID string) error {
	n, err := s.groupings.Clear(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear grouping history: %w", err)
	}
	logger.Infof("Cleared %d grouping records, session=%q", n, sessionID)
	return nil
}

func (s *LotteryService) DeleteGroupingBatch(ctx context.Context, batchID string) error {
	if err := s.groupings.DeleteBatch(ctx, batchID); err != nil {
		return fmt.Errorf("failed to delete grouping %s: %w", batchID, err)
	}
	return nil
}
