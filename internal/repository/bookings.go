package repository

import (
	"context"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BookingStore interface {
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (int64, error)
	DeleteBooking(ctx context.Context, id string) (int64, error)
	MarkBookingsStatus(ctx context.Context, ids []string, from, to string) (int64, error)
	DailyBookingStats(ctx context.Context, days int) ([]domain.DailyStat, error)
}

type InsertBookingParams struct {
	ID              string
	SessionID       string
	ProductID       string
	ProductName     string
	ProductPrice    decimal.Decimal
	Quantity        int
	Size            string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	Remarks         *string
	CouponCode      *string
	DiscountPercent int
	TotalAmount     decimal.Decimal
	Status          string
}

const insertBooking = `INSERT INTO bookings (
    id, session_id, product_id, product_name, product_price, quantity, size,
    customer_name, customer_phone, customer_email, customer_address,
    remarks, coupon_code, discount_percent, total_amount, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

func (q *Queries) InsertBooking(ctx context.Context, arg InsertBookingParams) error {
	_, err := q.db.Exec(ctx, insertBooking,
		arg.ID,
		arg.SessionID,
		arg.ProductID,
		arg.ProductName,
		arg.ProductPrice,
		arg.Quantity,
		arg.Size,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerEmail,
		arg.CustomerAddress,
		arg.Remarks,
		arg.CouponCode,
		arg.DiscountPercent,
		arg.TotalAmount,
		arg.Status,
	)
	return err
}

const bookingColumns = `id, COALESCE(session_id, ''), product_id, product_name, product_price, quantity, size,
    customer_name, customer_phone, customer_email, customer_address,
    remarks, coupon_code, discount_percent, total_amount, status, created_at`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.SessionID,
		&b.ProductID,
		&b.ProductName,
		&b.ProductPrice,
		&b.Quantity,
		&b.Size,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.CustomerAddress,
		&b.Remarks,
		&b.CouponCode,
		&b.DiscountPercent,
		&b.TotalAmount,
		&b.Status,
		&b.CreatedAt,
	)
	return b, err
}

const listBookings = `SELECT ` + bookingColumns + `
FROM bookings
WHERE ($1::timestamptz IS NULL OR (created_at >= $1 AND created_at < $2))
ORDER BY created_at DESC`

// ListBookings returns bookings newest first, restricted to one calendar day
// when filter.Day is set.
func (q *Queries) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var from, to *time.Time
	if filter.Day != nil {
		start := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, filter.Day.Location())
		end := start.AddDate(0, 0, 1)
		from, to = &start, &end
	}

	rows, err := q.db.Query(ctx, listBookings, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const getBooking = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

func (q *Queries) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, getBooking, id))
}

const updateBookingStatus = `UPDATE bookings SET status = $2 WHERE id = $1`

func (q *Queries) UpdateBookingStatus(ctx context.Context, id, status string) (int64, error) {
	tag, err := q.db.Exec(ctx, updateBookingStatus, id, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteBooking = `DELETE FROM bookings WHERE id = $1`

func (q *Queries) DeleteBooking(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteBooking, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const markBookingsStatus = `UPDATE bookings SET status = $3 WHERE id = ANY($1::uuid[]) AND status = $2`

// MarkBookingsStatus moves the given bookings from one status to another and
// leaves any booking already moved on by an admin untouched.
func (q *Queries) MarkBookingsStatus(ctx context.Context, ids []string, from, to string) (int64, error) {
	tag, err := q.db.Exec(ctx, markBookingsStatus, ids, from, to)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const dailyBookingStats = `SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
    COUNT(*)::int,
    COALESCE(SUM(total_amount), 0)
FROM bookings
WHERE created_at >= date_trunc('day', NOW()) - make_interval(days => $1 - 1)
GROUP BY day
ORDER BY day DESC`

func (q *Queries) DailyBookingStats(ctx context.Context, days int) ([]domain.DailyStat, error) {
	rows, err := q.db.Query(ctx, dailyBookingStats, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DailyStat
	for rows.Next() {
		var s domain.DailyStat
		if err := rows.Scan(&s.Date, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
