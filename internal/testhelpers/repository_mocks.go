package testhelpers

import (
	"context"
	"time"

	"classlottery/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) GetClasses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStudentRepository) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Statistics), args.Error(1)
}

func (m *MockStudentRepository) BulkInsert(ctx context.Context, students []models.Student) (int64, error) {
	args := m.Called(ctx, students)
	return args.Get(0).(int64), args.Error(1)
}

// MockDrawHistoryRepository is a mock implementation of DrawHistoryRepository
type MockDrawHistoryRepository struct {
	mock.Mock
}

func (m *MockDrawHistoryRepository) Record(ctx context.Context, record *models.DrawRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDrawHistoryRepository) RecordBatch(ctx context.Context, records []*models.DrawRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockDrawHistoryRepository) List(ctx context.Context, sessionID string, limit int) ([]*models.DrawRecord, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DrawRecord), args.Error(1)
}

func (m *MockDrawHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDrawHistoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGroupingHistoryRepository is a mock implementation of GroupingHistoryRepository
type MockGroupingHistoryRepository struct {
	mock.Mock
}

func (m *MockGroupingHistoryRepository) RecordBatch(ctx context.Context, records []*models.GroupingRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockGroupingHistoryRepository) ListRecentBatches(ctx context.Context, sessionID string, limit int) ([]*models.GroupingRecord, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GroupingRecord), args.Error(1)
}

func (m *MockGroupingHistoryRepository) GetByBatchID(ctx context.Context, batchID string) ([]*models.GroupingRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GroupingRecord), args.Error(1)
}

func (m *MockGroupingHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroupingHistoryRepository) DeleteBatch(ctx context.Context, batchID string) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

// MockPrizeHistoryRepository is a mock implementation of PrizeHistoryRepository
type MockPrizeHistoryRepository struct {
	mock.Mock
}

func (m *MockPrizeHistoryRepository) Record(ctx context.Context, record *models.PrizeDrawRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPrizeHistoryRepository) List(ctx context.Context, sessionID string, limit int) ([]*models.PrizeDrawRecord, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PrizeDrawRecord), args.Error(1)
}

func (m *MockPrizeHistoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPrizeHistoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.MembershipRecord) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*models.MembershipRecord, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MembershipRecord), args.Error(1)
}

func (m *MockMembershipRepository) ConsumeExport(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMembershipRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
