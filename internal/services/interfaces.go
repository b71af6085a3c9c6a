package services

import (
	"context"
	"time"

	"classlottery/internal/models"
)

// StudentRepository reads the roster. GetByID returns nil, nil when the
// student does not exist.
type StudentRepository interface {
	GetAll(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetClasses(ctx context.Context) ([]string, error)
	GetStatistics(ctx context.Context) (*models.Statistics, error)
	BulkInsert(ctx context.Context, students []models.Student) (int64, error)
}

// DrawHistoryRepository stores single and batch draw results.
// An empty sessionID means "all sessions".
type DrawHistoryRepository interface {
	Record(ctx context.Context, record *models.DrawRecord) error
	RecordBatch(ctx context.Context, records []*models.DrawRecord) error
	List(ctx context.Context, sessionID string, limit int) ([]*models.DrawRecord, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// GroupingHistoryRepository stores grouping batches. ListRecentBatches
// limits the number of batches, never splitting one.
type GroupingHistoryRepository interface {
	RecordBatch(ctx context.Context, records []*models.GroupingRecord) error
	ListRecentBatches(ctx context.Context, sessionID string, limit int) ([]*models.GroupingRecord, error)
	GetByBatchID(ctx context.Context, batchID string) ([]*models.GroupingRecord, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
	DeleteBatch(ctx context.Context, batchID string) error
}

// PrizeHistoryRepository stores one row per prize tier.
type PrizeHistoryRepository interface {
	Record(ctx context.Context, record *models.PrizeDrawRecord) error
	List(ctx context.Context, sessionID string, limit int) ([]*models.PrizeDrawRecord, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// MembershipRepository stores export memberships.
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.MembershipRecord) error
	GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*models.MembershipRecord, error)
	ConsumeExport(ctx context.Context, id int64) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
