package repository

import (
	"context"
	"errors"
	"fmt"

	"classlottery/internal/database"
	"classlottery/internal/models"

	"github.com/jackc/pgx/v5"
)

const studentColumns = `id, serial_number, student_id, name, gender, major, class`

// StudentRepository reads and imports the roster.
type StudentRepository struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetAll returns every student ordered by id.
func (r *StudentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		var s models.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}
	return students, nil
}

// GetByID returns the student or nil when it does not exist.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	var s models.Student
	err := scanStudent(r.db.QueryRow(ctx, query, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &s, nil
}

// GetClasses returns the distinct non-empty classes. COLLATE "C" keeps the
// order byte-wise and case-sensitive regardless of the database locale.
func (r *StudentRepository) GetClasses(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT class
		FROM students
		WHERE class IS NOT NULL AND class <> ''
		ORDER BY class COLLATE "C"
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	classes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect classes: %w", err)
	}
	return classes, nil
}

// GetStatistics counts students overall, by gender and by class.
func (r *StudentRepository) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{
		GenderStats: make([]models.GenderStat, 0),
		ClassStats:  make([]models.ClassStat, 0),
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	genderRows, err := r.db.Query(ctx, `
		SELECT gender, COUNT(*)
		FROM students
		WHERE gender IS NOT NULL
		GROUP BY gender
		ORDER BY gender COLLATE "C"
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query gender stats: %w", err)
	}
	defer genderRows.Close()
	for genderRows.Next() {
		var g models.GenderStat
		if err := genderRows.Scan(&g.Gender, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan gender stat: %w", err)
		}
		stats.GenderStats = append(stats.GenderStats, g)
	}
	if err := genderRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gender stats: %w", err)
	}

	classRows, err := r.db.Query(ctx, `
		SELECT class, COUNT(*)
		FROM students
		WHERE class IS NOT NULL
		GROUP BY class
		ORDER BY class COLLATE "C"
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query class stats: %w", err)
	}
	defer classRows.Close()
	for classRows.Next() {
		var c models.ClassStat
		if err := classRows.Scan(&c.Class, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan class stat: %w", err)
		}
		stats.ClassStats = append(stats.ClassStats, c)
	}
	if err := classRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate class stats: %w", err)
	}

	return stats, nil
}

// BulkInsert copies students into the roster in one COPY statement. Ids are
// assigned by the database.
func (r *StudentRepository) BulkInsert(ctx context.Context, students []models.Student) (int64, error) {
	rows := make([][]any, 0, len(students))
	for _, s := range students {
		rows = append(rows, []any{s.SerialNumber, s.StudentID, s.Name, s.Gender, s.Major, s.Class})
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"students"},
		[]string{"serial_number", "student_id", "name", "gender", "major", "class"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy %d students: %w", len(students), err)
	}
	return n, nil
}

func scanStudent(row pgx.Row, s *models.Student) error {
	return row.Scan(&s.ID, &s.SerialNumber, &s.StudentID, &s.Name, &s.Gender, &s.Major, &s.Class)
}
