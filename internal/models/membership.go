package models

import "time"

const (
	MembershipSingle  = "single"
	MembershipMonthly = "monthly"

	MembershipStatusActive  = "active"
	MembershipStatusExpired = "expired"
	MembershipStatusUsed    = "used"

	// UnlimitedExports marks a membership that is not counted down.
	UnlimitedExports = -1
)

// MembershipRecord gates the export endpoint. Only single memberships are
// counted down; monthly ones are limited by ExpiryTime.
type MembershipRecord struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"userId"`
	MembershipType   string     `json:"membershipType"`
	OrderNo          string     `json:"orderNo"`
	Amount           float64    `json:"amount"`
	RemainingExports int        `json:"remainingExports"`
	PurchaseTime     time.Time  `json:"purchaseTime"`
	ExpiryTime       *time.Time `json:"expiryTime,omitempty"`
	Status           string     `json:"status"`
}

// IsValid reports whether the membership may be used for an export at now.
func (m *MembershipRecord) IsValid(now time.Time) bool {
	if m.Status != MembershipStatusActive {
		return false
	}
	if m.ExpiryTime != nil && !m.ExpiryTime.After(now) {
		return false
	}
	if m.MembershipType == MembershipSingle && m.RemainingExports <= 0 {
		return false
	}
	return true
}
