package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"classlottery/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// studentCSVColumns is the expected column order of a roster upload:
// serial number, student number, name, gender, major, class.
const studentCSVColumns = 6

// UploadStudentsCSV handles the CSV upload for the roster.
func (h *HTTPHandler) UploadStudentsCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("studentCSV")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无法读取上传文件"})
		return
	}
	defer file.Close()

	students, err := parseStudentCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "CSV 文件格式错误"})
		return
	}

	n, err := h.service.ImportStudents(c.Request.Context(), students)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "学生导入成功", "imported": n})
}

// parseStudentCSV reads roster rows, skipping malformed ones. A header row is
// skipped as malformed because its serial number column is not numeric.
func parseStudentCSV(r io.Reader) ([]models.Student, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var students []models.Student
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) != studentCSVColumns {
			logger.Infof("Skipping malformed student CSV record: %v", record)
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(strings.TrimPrefix(record[i], "\ufeff"))
		}

		student := models.Student{
			StudentID: record[1],
			Name:      record[2],
			Gender:    models.StringPtr(record[3]),
			Major:     models.StringPtr(record[4]),
			Class:     models.StringPtr(record[5]),
		}
		if student.StudentID == "" || student.Name == "" {
			logger.Infof("Skipping student CSV record without number or name: %v", record)
			continue
		}
		if record[0] != "" {
			serial, err := strconv.Atoi(record[0])
			if err != nil {
				logger.Infof("Skipping student CSV record with invalid serial number: %v", record)
				continue
			}
			student.SerialNumber = &serial
		}

		students = append(students, student)
	}
	return students, nil
}
