package models

// Student is a roster entry eligible for selection.
// StudentID is the human-facing student number; ID is the stable key.
type Student struct {
	ID           int64   `json:"id"`
	SerialNumber *int    `json:"serialNumber,omitempty"`
	StudentID    string  `json:"studentId"`
	Name         string  `json:"name"`
	Gender       *string `json:"gender,omitempty"`
	Major        *string `json:"major,omitempty"`
	Class        *string `json:"class,omitempty"`
}

// GenderValue returns the gender or "" when unset.
func (s Student) GenderValue() string {
	if s.Gender == nil {
		return ""
	}
	return *s.Gender
}

// ClassValue returns the class or "" when unset.
func (s Student) ClassValue() string {
	if s.Class == nil {
		return ""
	}
	return *s.Class
}

// MajorValue returns the major or "" when unset.
func (s Student) MajorValue() string {
	if s.Major == nil {
		return ""
	}
	return *s.Major
}

type GenderStat struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

type ClassStat struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// Statistics is the aggregate view of the roster. Students without a gender
// or class are counted in Total only.
type Statistics struct {
	Total       int          `json:"total"`
	GenderStats []GenderStat `json:"genderStats"`
	ClassStats  []ClassStat  `json:"classStats"`
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
