package services

import (
	"context"
	"fmt"
	"time"

	"classlottery/internal/models"

	"github.com/google/logger"
	"github.com/google/uuid"
)

const (
	// MaxBatchDrawCount bounds GET /draw-multiple.
	MaxBatchDrawCount = 50

	DefaultDrawHistoryLimit     = 100
	DefaultGroupingHistoryLimit = 10
	DefaultPrizeHistoryLimit    = 10
	MaxHistoryLimit             = 500
)

// LotteryService runs draws, groupings and prize batches over the roster and
// keeps their history. It holds no per-request state; every call reads a
// fresh roster snapshot.
type LotteryService struct {
	students  StudentRepository
	draws     DrawHistoryRepository
	groupings GroupingHistoryRepository
	prizes    PrizeHistoryRepository
	rng       Randomizer

	now     func() time.Time
	batchID func() string
}

// NewLotteryService creates and initializes a new LotteryService.
func NewLotteryService(
	students StudentRepository,
	draws DrawHistoryRepository,
	groupings GroupingHistoryRepository,
	prizes PrizeHistoryRepository,
	rng Randomizer,
) *LotteryService {
	return &LotteryService{
		students:  students,
		draws:     draws,
		groupings: groupings,
		prizes:    prizes,
		rng:       rng,
		now:       time.Now,
		batchID:   func() string { return uuid.New().String() },
	}
}

// ListStudents returns the whole roster.
func (s *LotteryService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// GetStudent returns one student or a not-found error.
func (s *LotteryService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	if student == nil {
		return nil, notFoundError("学生不存在")
	}
	return student, nil
}

// ImportStudents appends students to the roster and returns how many were
// stored.
func (s *LotteryService) ImportStudents(ctx context.Context, students []models.Student) (int64, error) {
	if len(students) == 0 {
		return 0, validationError("没有可导入的学生")
	}
	n, err := s.students.BulkInsert(ctx, students)
	if err != nil {
		return 0, fmt.Errorf("failed to import students: %w", err)
	}
	logger.Infof("Imported %d students", n)
	return n, nil
}

// Classes returns the distinct non-empty classes in sorted order.
func (s *LotteryService) Classes(ctx context.Context) ([]string, error) {
	classes, err := s.students.GetClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

// Statistics returns roster counts by gender and class.
func (s *LotteryService) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats, err := s.students.GetStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return stats, nil
}

// Draw picks one student matching filter and records the draw.
func (s *LotteryService) Draw(ctx context.Context, filter DrawFilter, sessionID string) (*models.Student, error) {
	pool, err := s.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	winner := DrawOne(s.rng, pool, filter)
	if winner == nil {
		logger.Warningf("No eligible students, gender=%q class=%q", filter.Gender, filter.ClassName)
		return nil, notFoundError("没有符合条件的学生")
	}

	record := models.NewDrawRecord(*winner, s.now(), sessionID, "")
	if err := s.draws.Record(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record draw: %w", err)
	}
	return winner, nil
}

// DrawMultiple picks count distinct students. Unlike DrawMany, a short
// result is an error here: nothing is recorded unless the full count was
// drawn. All records of the batch share one batch id.
func (s *LotteryService) DrawMultiple(ctx context.Context, count int, filter DrawFilter, sessionID string) ([]models.Student, error) {
	if count < 1 || count > MaxBatchDrawCount {
		return nil, validationError(fmt.Sprintf("抽取数量必须在 1-%d 之间", MaxBatchDrawCount))
	}

	pool, err := s.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	winners := DrawMany(s.rng, pool, count, filter)
	if len(winners) == 0 {
		return nil, notFoundError("没有符合条件的学生")
	}
	if len(winners) < count {
		logger.Warningf("Not enough eligible students, want=%d got=%d", count, len(winners))
		return nil, notFoundError(fmt.Sprintf("符合条件的学生不足，仅找到 %d 人", len(winners)))
	}

	batchID := s.batchID()
	drawTime := s.now()
	records := make([]*models.DrawRecord, 0, len(winners))
	for _, w := range winners {
		records = append(records, models.NewDrawRecord(w, drawTime, sessionID, batchID))
	}
	if err := s.draws.RecordBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to record batch draw %s: %w", batchID, err)
	}
	return winners, nil
}

// DrawHistory returns draw records, most recent first.
func (s *LotteryService) DrawHistory(ctx context.Context, sessionID string, limit int) ([]*models.DrawRecord, error) {
	records, err := s.draws.List(ctx, sessionID, normalizeLimit(limit, DefaultDrawHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list draw history: %w", err)
	}
	return records, nil
}

// ClearDrawHistory deletes the draw records of a session, or all of them
// when sessionID is empty.
func (s *LotteryService) ClearDrawHistory(ctx context.Context, sessionID string) error {
	n, err := s.draws.Clear(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear draw history: %w", err)
	}
	logger.Infof("Cleared %d draw records, session=%q", n, sessionID)
	return nil
}

// DeleteDrawHistory deletes one draw record. Unknown ids are ignored.
func (s *LotteryService) DeleteDrawHistory(ctx context.Context, id int64) error {
	if err := s.draws.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete draw record %d: %w", id, err)
	}
	return nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
