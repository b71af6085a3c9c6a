package testhelpers

import (
	"fmt"

	"classlottery/internal/models"
)

// CreateTestStudent builds a student with the given id, gender and class.
// Empty gender or class leave the field unset.
func CreateTestStudent(id int64, gender, class string) models.Student {
	serial := int(id)
	return models.Student{
		ID:           id,
		SerialNumber: &serial,
		StudentID:    fmt.Sprintf("2024%04d", id),
		Name:         fmt.Sprintf("学生%d", id),
		Gender:       models.StringPtr(gender),
		Major:        models.StringPtr("计算机科学"),
		Class:        models.StringPtr(class),
	}
}

// CreateTestRoster returns ten students: ids 1-4 are 男 and 5-10 are 女,
// odd ids are in class A and even ids in class B.
func CreateTestRoster() []models.Student {
	roster := make([]models.Student, 0, 10)
	for id := int64(1); id <= 10; id++ {
		gender := "女"
		if id <= 4 {
			gender = "男"
		}
		class := "B"
		if id%2 == 1 {
			class = "A"
		}
		roster = append(roster, CreateTestStudent(id, gender, class))
	}
	return roster
}
