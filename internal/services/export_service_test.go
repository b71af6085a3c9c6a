package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"classlottery/internal/models"
	"classlottery/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestExportService() (*ExportService, *serviceMocks, *testhelpers.MockMembershipRepository) {
	lottery, m := newTestLotteryService(firstRand{})
	memberships, repo := newTestMembershipService()
	s := NewExportService(lottery, memberships)
	s.now = func() time.Time { return testNow }
	return s, m, repo
}

func singleMembership() *models.MembershipRecord {
	return &models.MembershipRecord{
		ID:               9,
		UserID:           "member-1",
		MembershipType:   models.MembershipSingle,
		RemainingExports: 1,
		Status:           models.MembershipStatusActive,
	}
}

func readExport(t *testing.T, file *ExportFile) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(file.Content, []byte("\xef\xbb\xbf")), "missing BOM")
	rows, err := csv.NewReader(bytes.NewReader(file.Content[3:])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()
	student := testhelpers.CreateTestStudent(1, "男", "A")

	t.Run("draw history", func(t *testing.T) {
		s, m, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "member-1", testNow).Return(singleMembership(), nil)
		repo.On("ConsumeExport", ctx, int64(9)).Return(nil)
		m.draws.On("List", ctx, "room-1", MaxHistoryLimit).Return([]*models.DrawRecord{
			models.NewDrawRecord(student, testNow, "room-1", "b-1"),
		}, nil)

		file, err := s.Export(ctx, ExportRequest{UserID: "member-1", SessionID: "room-1"})
		require.NoError(t, err)
		assert.Equal(t, "draw_history_20240902083000.csv", file.Filename)

		rows := readExport(t, file)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"2024-09-02 08:30:00", "20240001", "学生1", "A", "男", "是", "b-1"}, rows[1])
		repo.AssertExpectations(t)
	})

	t.Run("draw history is capped at the history limit", func(t *testing.T) {
		s, m, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "member-1", testNow).Return(singleMembership(), nil)
		repo.On("ConsumeExport", ctx, int64(9)).Return(nil)
		records := make([]*models.DrawRecord, MaxHistoryLimit)
		for i := range records {
			records[i] = models.NewDrawRecord(student, testNow, "room-1", "")
		}
		m.draws.On("List", ctx, "room-1", MaxHistoryLimit).Return(records, nil)

		file, err := s.Export(ctx, ExportRequest{UserID: "member-1", SessionID: "room-1"})
		require.NoError(t, err)
		assert.Len(t, readExport(t, file), MaxHistoryLimit+1)
		m.draws.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("grouping history has one row per member", func(t *testing.T) {
		s, m, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "member-1", testNow).Return(singleMembership(), nil)
		repo.On("ConsumeExport", ctx, int64(9)).Return(nil)
		m.groupings.On("ListRecentBatches", ctx, "", MaxHistoryLimit).Return([]*models.GroupingRecord{
			{BatchID: "g-1", GroupNumber: 1, TotalGroups: 1, GroupTime: testNow, Members: testhelpers.CreateTestRoster()[:3]},
		}, nil)

		file, err := s.Export(ctx, ExportRequest{UserID: "member-1", ExportType: ExportGrouping})
		require.NoError(t, err)
		assert.Len(t, readExport(t, file), 4)
	})

	t.Run("prize history", func(t *testing.T) {
		s, m, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "member-1", testNow).Return(singleMembership(), nil)
		repo.On("ConsumeExport", ctx, int64(9)).Return(nil)
		m.prizes.On("List", ctx, "", MaxHistoryLimit).Return([]*models.PrizeDrawRecord{
			{PrizeName: "一等奖", Winners: []models.Student{student}, WinnerCount: 1, DrawTime: testNow},
		}, nil)

		file, err := s.Export(ctx, ExportRequest{UserID: "member-1", ExportType: ExportPrize})
		require.NoError(t, err)
		rows := readExport(t, file)
		require.Len(t, rows, 2)
		assert.Equal(t, "一等奖", rows[1][1])
	})

	t.Run("without membership nothing is rendered", func(t *testing.T) {
		s, m, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "stranger", testNow).Return(nil, nil)

		_, err := s.Export(ctx, ExportRequest{UserID: "stranger"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		m.draws.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown export type is not charged", func(t *testing.T) {
		s, _, repo := newTestExportService()
		repo.On("GetActiveByUserID", ctx, "member-1", testNow).Return(singleMembership(), nil)

		_, err := s.Export(ctx, ExportRequest{UserID: "member-1", ExportType: "pdf"})
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "ConsumeExport", mock.Anything, mock.Anything)
	})
}
