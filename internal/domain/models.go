package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrCouponInvalid      = errors.New("invalid or expired coupon code")
	ErrCouponLimitReached = errors.New("this coupon has reached its usage limit")
	ErrCouponExpired      = errors.New("this coupon has expired")
	ErrDuplicateCoupon    = errors.New("coupon already exists")
	ErrValidation         = errors.New("please fill in all required fields")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrInvalidStep        = errors.New("action not allowed in current checkout step")
	ErrSubmitInProgress   = errors.New("order submission already in progress")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnsupportedMedia   = errors.New("unsupported image")
)

const (
	BookingStatusPending        = "pending"
	BookingStatusPaymentClaimed = "payment_claimed"
	BookingStatusConfirmed      = "confirmed"
	BookingStatusShipped        = "shipped"
	BookingStatusDelivered      = "delivered"
	BookingStatusCancelled      = "cancelled"
)

var bookingStatuses = map[string]bool{
	BookingStatusPending:        true,
	BookingStatusPaymentClaimed: true,
	BookingStatusConfirmed:      true,
	BookingStatusShipped:        true,
	BookingStatusDelivered:      true,
	BookingStatusCancelled:      true,
}

func ValidBookingStatus(status string) bool {
	return bookingStatuses[status]
}

// ProductSnapshot is the copy of product attributes a cart line keeps from the
// moment it was added.
type ProductSnapshot struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	ImageURL      string              `json:"image_url,omitempty"`
	Sizes         []string            `json:"sizes"`
}

// MaxLineQuantity caps the quantity of a single cart line. It keeps the merge
// arithmetic far from overflow and fits the bookings.quantity column.
const MaxLineQuantity = 99

// ClampQuantity brings quantity into [1, MaxLineQuantity].
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	if quantity > MaxLineQuantity {
		return MaxLineQuantity
	}
	return quantity
}

type CartItem struct {
	Product  ProductSnapshot `json:"product"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
}

func (i CartItem) Matches(productID, size string) bool {
	return i.Product.ID == productID && i.Size == size
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Coupon struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	IsActive        bool       `json:"is_active"`
	UsageLimit      *int       `json:"usage_limit"`
	UsedCount       int        `json:"used_count"`
	ExpiresAt       *time.Time `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Check reports why the coupon cannot be redeemed at now, or nil.
func (c Coupon) Check(now time.Time) error {
	if !c.IsActive {
		return ErrCouponInvalid
	}
	if c.UsageLimit != nil && *c.UsageLimit > 0 && c.UsedCount >= *c.UsageLimit {
		return ErrCouponLimitReached
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return ErrCouponExpired
	}
	return nil
}

type AppliedCoupon struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Remarks string `json:"remarks"`
}

func (c Customer) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Address) == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

type Booking struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"session_id,omitempty"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	Quantity        int             `json:"quantity"`
	Size            string          `json:"size"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerAddress string          `json:"customer_address"`
	Remarks         *string         `json:"remarks"`
	CouponCode      *string         `json:"coupon_code"`
	DiscountPercent int             `json:"discount_percent"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

type BookingFilter struct {
	Day *time.Time
}

type DailyStat struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
