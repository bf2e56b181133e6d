package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type CouponService struct {
	store repository.CouponStore
	now   Clock
}

func NewCouponService(store repository.CouponStore) *CouponService {
	return &CouponService{store: store, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (s *CouponService) WithClock(now Clock) *CouponService {
	s.now = now
	return s
}

// Validate looks up an active coupon by code. Blank input returns nil, nil.
func (s *CouponService) Validate(ctx context.Context, code string) (*domain.AppliedCoupon, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}

	coupon, err := s.store.GetActiveCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponInvalid
		}
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}

	if err := coupon.Check(s.now()); err != nil {
		return nil, err
	}

	return &domain.AppliedCoupon{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
	}, nil
}

type CreateCouponInput struct {
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	UsageLimit      *int       `json:"usage_limit"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func (s *CouponService) List(ctx context.Context) ([]domain.Coupon, error) {
	return s.store.ListCoupons(ctx)
}

func (s *CouponService) Create(ctx context.Context, in CreateCouponInput) (*domain.Coupon, error) {
	code := domain.NormalizeCouponCode(in.Code)
	if code == "" || in.DiscountPercent < 1 || in.DiscountPercent > 100 {
		return nil, domain.ErrValidation
	}
	if in.UsageLimit != nil && *in.UsageLimit <= 0 {
		in.UsageLimit = nil
	}

	coupon, err := s.store.CreateCoupon(ctx, repository.CreateCouponParams{
		Code:            code,
		DiscountPercent: in.DiscountPercent,
		UsageLimit:      in.UsageLimit,
		ExpiresAt:       in.ExpiresAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateCoupon
		}
		return nil, err
	}
	return &coupon, nil
}

func (s *CouponService) SetActive(ctx context.Context, id string, active bool) error {
	return expectAffected(s.store.SetCouponActive(ctx, id, active))
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	return expectAffected(s.store.DeleteCoupon(ctx, id))
}

// Redeem counts one use of code.
func (s *CouponService) Redeem(ctx context.Context, code string) error {
	return expectAffected(s.store.IncrementCouponUsage(ctx, domain.NormalizeCouponCode(code)))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint")
}

func expectAffected(rows int64, err error) error {
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
