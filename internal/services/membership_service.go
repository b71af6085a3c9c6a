package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classlottery/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/logger"
	"github.com/google/uuid"
)

const monthlyMembershipDuration = 30 * 24 * time.Hour

// CreateMembershipRequest is the payload of POST /membership.
type CreateMembershipRequest struct {
	UserID         string  `json:"userId" validate:"required,max=50"`
	MembershipType string  `json:"membershipType" validate:"required,oneof=single monthly"`
	OrderNo        string  `json:"orderNo" validate:"max=100"`
	Amount         float64 `json:"amount" validate:"gte=0"`
}

// MembershipStatus is the answer of GET /membership/check/:userId.
type MembershipStatus struct {
	IsValid    bool                     `json:"isValid"`
	Membership *models.MembershipRecord `json:"membership,omitempty"`
}

// MembershipService gates exports behind a paid membership. It is a flag and
// counter check only; there is no payment lifecycle behind it.
type MembershipService struct {
	repo     MembershipRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewMembershipService(repo MembershipRepository) *MembershipService {
	return &MembershipService{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateMembership records a purchased membership. Single memberships allow
// one export; monthly ones are unlimited for 30 days.
func (s *MembershipService) CreateMembership(ctx context.Context, req CreateMembershipRequest) (*models.MembershipRecord, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, validationError(fmt.Sprintf("会员参数无效: %s", verrs[0].Field()))
		}
		return nil, validationError("会员参数无效")
	}

	now := s.now()
	membership := &models.MembershipRecord{
		UserID:         req.UserID,
		MembershipType: req.MembershipType,
		OrderNo:        req.OrderNo,
		Amount:         req.Amount,
		PurchaseTime:   now,
		Status:         models.MembershipStatusActive,
	}
	if membership.OrderNo == "" {
		membership.OrderNo = "ORD" + strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	switch req.MembershipType {
	case models.MembershipSingle:
		membership.RemainingExports = 1
	case models.MembershipMonthly:
		membership.RemainingExports = models.UnlimitedExports
		expiry := now.Add(monthlyMembershipDuration)
		membership.ExpiryTime = &expiry
	}

	if err := s.repo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create membership for %s: %w", req.UserID, err)
	}
	logger.Infof("Created %s membership %d for user %s", membership.MembershipType, membership.ID, membership.UserID)
	return membership, nil
}

// CheckMembership reports whether userID currently holds a valid membership.
func (s *MembershipService) CheckMembership(ctx context.Context, userID string) (*MembershipStatus, error) {
	membership, err := s.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MembershipStatus{IsValid: membership != nil, Membership: membership}, nil
}

// Authorize returns the membership an export may be charged to, or an
// unauthorized error.
func (s *MembershipService) Authorize(ctx context.Context, userID string) (*models.MembershipRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, unauthorizedError("请先购买会员")
	}
	membership, err := s.activeMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, unauthorizedError("会员无效或已过期，请先购买会员")
	}
	return membership, nil
}

// Consume charges one export to membership. Monthly memberships are not
// counted.
func (s *MembershipService) Consume(ctx context.Context, membership *models.MembershipRecord) error {
	if membership.MembershipType != models.MembershipSingle {
		return nil
	}
	if err := s.repo.ConsumeExport(ctx, membership.ID); err != nil {
		return fmt.Errorf("failed to consume export of membership %d: %w", membership.ID, err)
	}
	return nil
}

// ExpireOverdue marks active memberships past their expiry as expired.
func (s *MembershipService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire memberships: %w", err)
	}
	return n, nil
}

// RunSweeper expires overdue memberships every interval until ctx is done.
func (s *MembershipService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireOverdue(ctx)
			if err != nil {
				logger.Errorf("Membership sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Infof("Expired %d memberships", n)
			}
		}
	}
}

func (s *MembershipService) activeMembership(ctx context.Context, userID string) (*models.MembershipRecord, error) {
	membership, err := s.repo.GetActiveByUserID(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get membership for %s: %w", userID, err)
	}
	if membership != nil && !membership.IsValid(s.now()) {
		return nil, nil
	}
	return membership, nil
}
