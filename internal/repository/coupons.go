package repository

import (
	"context"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
)

type CouponStore interface {
	GetActiveCouponByCode(ctx context.Context, code string) (domain.Coupon, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	CreateCoupon(ctx context.Context, arg CreateCouponParams) (domain.Coupon, error)
	SetCouponActive(ctx context.Context, id string, active bool) (int64, error)
	DeleteCoupon(ctx context.Context, id string) (int64, error)
	IncrementCouponUsage(ctx context.Context, code string) (int64, error)
}

type CreateCouponParams struct {
	Code            string
	DiscountPercent int
	UsageLimit      *int
	ExpiresAt       *time.Time
}

const couponColumns = `id, code, discount_percent, is_active, usage_limit, used_count, expires_at, created_at`

func scanCoupon(row pgx.Row) (domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountPercent,
		&c.IsActive,
		&c.UsageLimit,
		&c.UsedCount,
		&c.ExpiresAt,
		&c.CreatedAt,
	)
	return c, err
}

const getActiveCouponByCode = `SELECT ` + couponColumns + `
FROM coupon_codes
WHERE code = $1 AND is_active = TRUE`

func (q *Queries) GetActiveCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getActiveCouponByCode, code))
}

const listCoupons = `SELECT ` + couponColumns + `
FROM coupon_codes
ORDER BY created_at DESC`

func (q *Queries) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := q.db.Query(ctx, listCoupons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createCoupon = `INSERT INTO coupon_codes (code, discount_percent, usage_limit, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING ` + couponColumns

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (domain.Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, createCoupon, arg.Code, arg.DiscountPercent, arg.UsageLimit, arg.ExpiresAt))
}

const setCouponActive = `UPDATE coupon_codes SET is_active = $2 WHERE id = $1`

func (q *Queries) SetCouponActive(ctx context.Context, id string, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setCouponActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteCoupon = `DELETE FROM coupon_codes WHERE id = $1`

func (q *Queries) DeleteCoupon(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCoupon, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const incrementCouponUsage = `UPDATE coupon_codes SET used_count = used_count + 1 WHERE code = $1`

func (q *Queries) IncrementCouponUsage(ctx context.Context, code string) (int64, error) {
	tag, err := q.db.Exec(ctx, incrementCouponUsage, code)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
