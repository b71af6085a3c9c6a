package models

import "time"

// DrawRecord is one student picked by a single or batch draw. The student
// fields are a snapshot taken at draw time and are never refreshed from the
// roster.
type DrawRecord struct {
	ID            int64     `json:"id"`
	StudentID     int64     `json:"studentId"`
	StudentName   string    `json:"studentName"`
	StudentNumber string    `json:"studentNumber"`
	Class         *string   `json:"class,omitempty"`
	Gender        *string   `json:"gender,omitempty"`
	DrawTime      time.Time `json:"drawTime"`
	SessionID     *string   `json:"sessionId,omitempty"`
	IsBatch       bool      `json:"isBatch"`
	BatchID       *string   `json:"batchId,omitempty"`
}

// NewDrawRecord snapshots a student into a draw record.
func NewDrawRecord(s Student, drawTime time.Time, sessionID string, batchID string) *DrawRecord {
	return &DrawRecord{
		StudentID:     s.ID,
		StudentName:   s.Name,
		StudentNumber: s.StudentID,
		Class:         s.Class,
		Gender:        s.Gender,
		DrawTime:      drawTime,
		SessionID:     StringPtr(sessionID),
		IsBatch:       batchID != "",
		BatchID:       StringPtr(batchID),
	}
}

// GroupingRecord is one group of one grouping batch. Group numbers of a
// batch run 1..TotalGroups without gaps.
type GroupingRecord struct {
	ID          int64     `json:"id"`
	BatchID     string    `json:"batchId"`
	GroupNumber int       `json:"groupNumber"`
	GroupSize   int       `json:"groupSize"`
	TotalGroups int       `json:"totalGroups"`
	Members     []Student `json:"members"`
	GroupTime   time.Time `json:"groupTime"`
	SessionID   *string   `json:"sessionId,omitempty"`
}

// PrizeDrawRecord holds the winners of one prize tier.
type PrizeDrawRecord struct {
	ID          int64     `json:"id"`
	PrizeName   string    `json:"prizeName"`
	Winners     []Student `json:"winners"`
	WinnerCount int       `json:"winnerCount"`
	DrawTime    time.Time `json:"drawTime"`
	SessionID   *string   `json:"sessionId,omitempty"`
	BatchID     *string   `json:"batchId,omitempty"`
}
