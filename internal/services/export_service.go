package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/logger"
)

const (
	ExportDraw     = "draw"
	ExportGrouping = "grouping"
	ExportPrize    = "prize"

	exportTimeLayout = "2006-01-02 15:04:05"
)

// ExportRequest is the payload of POST /export/excel.
type ExportRequest struct {
	UserID     string `json:"userId"`
	ExportType string `json:"exportType"`
	SessionID  string `json:"sessionId"`
}

// ExportFile is a rendered export. Content is CSV with a UTF-8 BOM so that
// spreadsheet programs pick the right encoding.
type ExportFile struct {
	Filename string
	Content  []byte
}

// ExportService renders history as CSV for members.
type ExportService struct {
	lottery     *LotteryService
	memberships *MembershipService
	now         func() time.Time
}

func NewExportService(lottery *LotteryService, memberships *MembershipService) *ExportService {
	return &ExportService{
		lottery:     lottery,
		memberships: memberships,
		now:         time.Now,
	}
}

// Export checks the membership, renders the requested history and charges
// one export to the membership.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportFile, error) {
	membership, err := s.memberships.Authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	// Add BOM to ensure UTF-8 compatibility in Excel
	buf.WriteString("\xef\xbb\xbf")
	w := csv.NewWriter(&buf)

	switch req.ExportType {
	case ExportDraw, "":
		req.ExportType = ExportDraw
		err = s.writeDrawHistory(ctx, w, req.SessionID)
	case ExportGrouping:
		err = s.writeGroupingHistory(ctx, w, req.SessionID)
	case ExportPrize:
		err = s.writePrizeHistory(ctx, w, req.SessionID)
	default:
		return nil, validationError(fmt.Sprintf("不支持的导出类型: %s", req.ExportType))
	}
	if err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}

	if err := s.memberships.Consume(ctx, membership); err != nil {
		return nil, err
	}
	logger.Infof("Exported %s history for user %s", req.ExportType, req.UserID)

	return &ExportFile{
		Filename: fmt.Sprintf("%s_history_%s.csv", req.ExportType, s.now().Format("20060102150405")),
		Content:  buf.Bytes(),
	}, nil
}

func (s *ExportService) writeDrawHistory(ctx context.Context, w *csv.Writer, sessionID string) error {
	records, err := s.lottery.DrawHistory(ctx, sessionID, MaxHistoryLimit)
	if err != nil {
		return err
	}
	warnIfTruncated("draw", len(records))
	if err := w.Write([]string{"抽签时间", "学号", "姓名", "班级", "性别", "批量抽签", "批次号"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.DrawTime.Format(exportTimeLayout),
			r.StudentNumber,
			r.StudentName,
			deref(r.Class),
			deref(r.Gender),
			yesNo(r.IsBatch),
			deref(r.BatchID),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write draw record %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *ExportService) writeGroupingHistory(ctx context.Context, w *csv.Writer, sessionID string) error {
	records, err := s.lottery.GroupingHistory(ctx, sessionID, MaxHistoryLimit)
	if err != nil {
		return err
	}
	warnIfTruncated("grouping", len(records))
	if err := w.Write([]string{"分组时间", "批次号", "组号", "总组数", "学号", "姓名", "性别", "班级"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		for _, m := range r.Members {
			row := []string{
				r.GroupTime.Format(exportTimeLayout),
				r.BatchID,
				strconv.Itoa(r.GroupNumber),
				strconv.Itoa(r.TotalGroups),
				m.StudentID,
				m.Name,
				m.GenderValue(),
				m.ClassValue(),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write grouping record %d: %w", r.ID, err)
			}
		}
	}
	return nil
}

func (s *ExportService) writePrizeHistory(ctx context.Context, w *csv.Writer, sessionID string) error {
	records, err := s.lottery.PrizeHistory(ctx, sessionID, MaxHistoryLimit)
	if err != nil {
		return err
	}
	warnIfTruncated("prize", len(records))
	if err := w.Write([]string{"抽奖时间", "奖品名称", "学号", "姓名", "班级", "批次号"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		for _, winner := range r.Winners {
			row := []string{
				r.DrawTime.Format(exportTimeLayout),
				r.PrizeName,
				winner.StudentID,
				winner.Name,
				winner.ClassValue(),
				deref(r.BatchID),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write prize record %d: %w", r.ID, err)
			}
		}
	}
	return nil
}

// Exports read at most MaxHistoryLimit records, newest first.
func warnIfTruncated(kind string, n int) {
	if n >= MaxHistoryLimit {
		logger.Warningf("%s export truncated to the latest %d records", kind, MaxHistoryLimit)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
