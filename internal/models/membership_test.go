package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMembershipRecord_IsValid(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name string
		m    MembershipRecord
		want bool
	}{
		{
			name: "single with one export left",
			m:    MembershipRecord{MembershipType: MembershipSingle, RemainingExports: 1, Status: MembershipStatusActive},
			want: true,
		},
		{
			name: "single used up",
			m:    MembershipRecord{MembershipType: MembershipSingle, RemainingExports: 0, Status: MembershipStatusActive},
			want: false,
		},
		{
			name: "monthly before expiry",
			m:    MembershipRecord{MembershipType: MembershipMonthly, RemainingExports: UnlimitedExports, ExpiryTime: &later, Status: MembershipStatusActive},
			want: true,
		},
		{
			name: "monthly after expiry",
			m:    MembershipRecord{MembershipType: MembershipMonthly, RemainingExports: UnlimitedExports, ExpiryTime: &earlier, Status: MembershipStatusActive},
			want: false,
		},
		{
			name: "monthly expiring exactly now",
			m:    MembershipRecord{MembershipType: MembershipMonthly, RemainingExports: UnlimitedExports, ExpiryTime: &now, Status: MembershipStatusActive},
			want: false,
		},
		{
			name: "expired status",
			m:    MembershipRecord{MembershipType: MembershipMonthly, RemainingExports: UnlimitedExports, ExpiryTime: &later, Status: MembershipStatusExpired},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.IsValid(now))
		})
	}
}

func TestNewDrawRecord(t *testing.T) {
	class := "A"
	s := Student{ID: 4, StudentID: "20240004", Name: "学生4", Class: &class}
	now := time.Now()

	single := NewDrawRecord(s, now, "", "")
	assert.False(t, single.IsBatch)
	assert.Nil(t, single.BatchID)
	assert.Nil(t, single.SessionID)
	assert.Equal(t, "20240004", single.StudentNumber)

	batch := NewDrawRecord(s, now, "room-1", "b-1")
	assert.True(t, batch.IsBatch)
	assert.Equal(t, "b-1", *batch.BatchID)
	assert.Equal(t, "room-1", *batch.SessionID)
}
