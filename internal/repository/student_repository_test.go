package repository

import (
	"context"
	"testing"

	"classlottery/internal/models"
	"classlottery/internal/repository/testutil"
	"classlottery/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewStudentRepository(testDB.DB)
	ctx := context.Background()

	roster := testhelpers.CreateTestRoster()
	noClass := testhelpers.CreateTestStudent(11, "", "")
	roster = append(roster, noClass)

	n, err := repo.BulkInsert(ctx, roster)
	require.NoError(t, err)
	require.Equal(t, int64(11), n)

	t.Run("get all in insertion order", func(t *testing.T) {
		students, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, students, 11)
		assert.Equal(t, "20240001", students[0].StudentID)
		assert.Nil(t, students[10].Class)
		assert.Nil(t, students[10].Gender)
	})

	t.Run("get by id", func(t *testing.T) {
		students, err := repo.GetAll(ctx)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, students[2].ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, students[2], *got)

		missing, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("classes are distinct and sorted", func(t *testing.T) {
		classes, err := repo.GetClasses(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, classes)
	})

	t.Run("statistics", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 11, stats.Total)
		assert.ElementsMatch(t, []models.GenderStat{{Gender: "男", Count: 4}, {Gender: "女", Count: 6}}, stats.GenderStats)
		assert.Equal(t, []models.ClassStat{{Class: "A", Count: 5}, {Class: "B", Count: 5}}, stats.ClassStats)
	})
}
