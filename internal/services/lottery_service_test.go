package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"classlottery/internal/models"
	"classlottery/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)

type serviceMocks struct {
	students  *testhelpers.MockStudentRepository
	draws     *testhelpers.MockDrawHistoryRepository
	groupings *testhelpers.MockGroupingHistoryRepository
	prizes    *testhelpers.MockPrizeHistoryRepository
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	m.students.AssertExpectations(t)
	m.draws.AssertExpectations(t)
	m.groupings.AssertExpectations(t)
	m.prizes.AssertExpectations(t)
}

func newTestLotteryService(rng Randomizer) (*LotteryService, *serviceMocks) {
	m := &serviceMocks{
		students:  new(testhelpers.MockStudentRepository),
		draws:     new(testhelpers.MockDrawHistoryRepository),
		groupings: new(testhelpers.MockGroupingHistoryRepository),
		prizes:    new(testhelpers.MockPrizeHistoryRepository),
	}
	s := NewLotteryService(m.students, m.draws, m.groupings, m.prizes, rng)
	s.now = func() time.Time { return testNow }
	s.batchID = func() string { return "batch-1" }
	return s, m
}

func TestLotteryService_GetStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		student := testhelpers.CreateTestStudent(3, "男", "A")
		m.students.On("GetByID", ctx, int64(3)).Return(&student, nil)

		got, err := s.GetStudent(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("missing student is not found", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		m.students.On("GetByID", ctx, int64(404)).Return(nil, nil)

		_, err := s.GetStudent(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "学生不存在", err.Error())
	})

	t.Run("repository error is internal", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		m.students.On("GetByID", ctx, int64(1)).Return(nil, errors.New("connection reset"))

		_, err := s.GetStudent(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrValidation)
	})
}

func TestLotteryService_ImportStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("empty import is rejected", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		_, err := s.ImportStudents(ctx, nil)
		assert.ErrorIs(t, err, ErrValidation)
		m.students.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
	})

	t.Run("stores the roster", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		roster := testhelpers.CreateTestRoster()
		m.students.On("BulkInsert", ctx, roster).Return(int64(10), nil)

		n, err := s.ImportStudents(ctx, roster)
		require.NoError(t, err)
		assert.Equal(t, int64(10), n)
		m.assertExpectations(t)
	})
}

func TestLotteryService_Draw(t *testing.T) {
	ctx := context.Background()
	roster := testhelpers.CreateTestRoster()

	t.Run("records the winner with the session", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		m.students.On("GetAll", ctx).Return(roster, nil)
		m.draws.On("Record", ctx, mock.MatchedBy(func(r *models.DrawRecord) bool {
			return r.StudentID == 2 &&
				r.StudentNumber == "20240002" &&
				r.SessionID != nil && *r.SessionID == "room-1" &&
				!r.IsBatch && r.BatchID == nil &&
				r.DrawTime.Equal(testNow)
		})).Return(nil)

		winner, err := s.Draw(ctx, DrawFilter{Gender: "男", ClassName: "B"}, "room-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), winner.ID)
		m.assertExpectations(t)
	})

	t.Run("no match is not found and nothing is recorded", func(t *testing.T) {
		s, m := newTestLotteryService(NewRandomizer(1))
		m.students.On("GetAll", ctx).Return(roster, nil)

		_, err := s.Draw(ctx, DrawFilter{ClassName: "C"}, "")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "没有符合条件的学生", err.Error())
		m.draws.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("history failure fails the draw", func(t *testing.T) {
		s, m := newTestLotteryService(firstRand{})
		m.students.On("GetAll", ctx).Return(roster, nil)
		m.draws.On("Record", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := s.Draw(ctx, DrawFilter{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestLotteryService_DrawMultiple(t *testing.T) {
	ctx := context.Background()
	roster := testhelpers.CreateTestRoster()

	t.Run("count out of range", func(t *testing.T) {
		for _, count := range []int{0, -1, MaxBatchDrawCount + 1} {
			s, m := newTestLotteryService(firstRand{})
			_, err := s.DrawMultiple(ctx, count, DrawFilter{}, "")
			assert.ErrorIs(t, err, ErrValidation, "count %d", count)
			m.students.AssertNotCalled(t, "GetAll", mock.Anything)
		}
	})

	t.Run("records one batch with a shared id", func(t *testing.T) {
		s, m := newTestLotteryService(NewRandomizer(21))
		m.students.On("GetAll", ctx).Return(roster, nil)
		m.draws.On("RecordBatch", ctx, mock.MatchedBy(func(records []*models.DrawRecord) bool {
			if len(records) != 3 {
				return false
			}
			for _, r := range records {
				if !r.IsBatch || r.BatchID == nil || *r.BatchID != "batch-1" {
					return false
				}
			}
			return true
		})).Return(nil)

		winners, err := s.DrawMultiple(ctx, 3, DrawFilter{Gender: "女"}, "room-1")
		require.NoError(t, err)
		assert.Len(t, winners, 3)
		m.assertExpectations(t)
	})

	t.Run("short pool fails without recording", func(t *testing.T) {
		s, m := newTestLotteryService(NewRandomizer(21))
		m.students.On("GetAll", ctx).Return(roster, nil)

		_, err := s.DrawMultiple(ctx, 5, DrawFilter{Gender: "男", ClassName: "A"}, "")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "符合条件的学生不足，仅找到 2 人", err.Error())
		m.draws.AssertNotCalled(t, "RecordBatch", mock.Anything, mock.Anything)
	})

	t.Run("empty pool", func(t *testing.T) {
		s, m := newTestLotteryService(NewRandomizer(21))
		m.students.On("GetAll", ctx).Return([]models.Student{}, nil)

		_, err := s.DrawMultiple(ctx, 1, DrawFilter{}, "")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "没有符合条件的学生", err.Error())
	})
}

func TestLotteryService_DrawHistory(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when unset", 0, DefaultDrawHistoryLimit},
		{"default when negative", -5, DefaultDrawHistoryLimit},
		{"explicit", 20, 20},
		{"capped", 10000, MaxHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestLotteryService(firstRand{})
			m.draws.On("List", ctx, "room-1", tt.want).Return([]*models.DrawRecord{}, nil)

			records, err := s.DrawHistory(ctx, "room-1", tt.limit)
			require.NoError(t, err)
			assert.Empty(t, records)
			m.assertExpectations(t)
		})
	}
}

func TestLotteryService_ClearAndDeleteDrawHistory(t *testing.T) {
	ctx := context.Background()
	s, m := newTestLotteryService(firstRand{})
	m.draws.On("Clear", ctx, "").Return(int64(12), nil)
	m.draws.On("Delete", ctx, int64(7)).Return(nil)

	require.NoError(t, s.ClearDrawHistory(ctx, ""))
	require.NoError(t, s.DeleteDrawHistory(ctx, 7))
	m.assertExpectations(t)
}
