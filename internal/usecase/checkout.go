package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/checkout"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/google/uuid"
)

type TxRunner interface {
	ExecTx(ctx context.Context, fn func(repository.Querier) error) error
}

type CouponRedeemer interface {
	Validate(ctx context.Context, code string) (*domain.AppliedCoupon, error)
	Redeem(ctx context.Context, code string) error
}

// CheckoutService turns a submitted checkout into booking rows and reports
// payment claims. It satisfies checkout.Submitter and checkout.PaymentNotifier.
type CheckoutService struct {
	store     TxRunner
	coupons   CouponRedeemer
	publisher EventPublisher
	now       Clock
	newID     func() string
}

func NewCheckoutService(store TxRunner, coupons CouponRedeemer, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		store:     store,
		coupons:   coupons,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, req checkout.OrderRequest) (*checkout.OrderReceipt, error) {
	if err := req.Customer.Validate(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// The coupon was checked when applied; it may have been deactivated or
	// used up since, so check it again before writing bookings.
	coupon := req.Coupon
	if coupon != nil && s.coupons != nil {
		fresh, err := s.coupons.Validate(ctx, coupon.Code)
		if err != nil {
			return nil, err
		}
		coupon = fresh
	}

	pct := checkout.DiscountPercent(coupon)
	var couponCode *string
	if coupon != nil {
		code := coupon.Code
		couponCode = &code
	}
	var remarks *string
	if r := strings.TrimSpace(req.Customer.Remarks); r != "" {
		remarks = &r
	}

	placedAt := s.now()
	params := make([]repository.InsertBookingParams, 0, len(req.Items))
	for _, item := range req.Items {
		params = append(params, repository.InsertBookingParams{
			ID:              s.newID(),
			SessionID:       req.SessionID,
			ProductID:       item.Product.ID,
			ProductName:     item.Product.Name,
			ProductPrice:    item.Product.Price,
			Quantity:        item.Quantity,
			Size:            item.Size,
			CustomerName:    strings.TrimSpace(req.Customer.Name),
			CustomerPhone:   strings.TrimSpace(req.Customer.Phone),
			CustomerEmail:   strings.TrimSpace(req.Customer.Email),
			CustomerAddress: strings.TrimSpace(req.Customer.Address),
			Remarks:         remarks,
			CouponCode:      couponCode,
			DiscountPercent: pct,
			TotalAmount:     checkout.LineTotal(item, pct),
			Status:          domain.BookingStatusPending,
		})
	}

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		for _, p := range params {
			if err := q.InsertBooking(ctx, p); err != nil {
				return fmt.Errorf("insert booking for %s: %w", p.ProductName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if couponCode != nil && s.coupons != nil {
		if err := s.coupons.Redeem(ctx, *couponCode); err != nil {
			log.Printf("Failed to redeem coupon %s: %v", *couponCode, err)
		}
	}

	totals := checkout.ComputeTotals(req.Items, pct)
	receipt := &checkout.OrderReceipt{
		BookingIDs: make([]string, len(params)),
		Totals:     totals,
	}
	bookings := make([]domain.Booking, len(params))
	for i, p := range params {
		receipt.BookingIDs[i] = p.ID
		bookings[i] = bookingFromParams(p, placedAt)
	}

	if s.publisher != nil {
		event := domain.BookingPlacedEvent{
			SchemaVersion: domain.EventSchemaVersion,
			EventID:       s.newID(),
			SessionID:     req.SessionID,
			Bookings:      bookings,
			Total:         totals.Total,
			PlacedAt:      placedAt,
		}
		if err := s.publisher.PublishBookingPlaced(ctx, event); err != nil {
			log.Printf("Failed to publish booking placed for session %s: %v", req.SessionID, err)
		}
	}

	return receipt, nil
}

func (s *CheckoutService) AssertPayment(ctx context.Context, a checkout.PaymentAssertion) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishPaymentAsserted(ctx, domain.PaymentAssertedEvent{
		SchemaVersion: domain.EventSchemaVersion,
		EventID:       s.newID(),
		SessionID:     a.SessionID,
		BookingIDs:    a.BookingIDs,
		Amount:        a.Amount,
		CustomerName:  a.CustomerName,
		AssertedAt:    s.now(),
	})
}

func bookingFromParams(p repository.InsertBookingParams, createdAt time.Time) domain.Booking {
	return domain.Booking{
		ID:              p.ID,
		SessionID:       p.SessionID,
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		ProductPrice:    p.ProductPrice,
		Quantity:        p.Quantity,
		Size:            p.Size,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerEmail:   p.CustomerEmail,
		CustomerAddress: p.CustomerAddress,
		Remarks:         p.Remarks,
		CouponCode:      p.CouponCode,
		DiscountPercent: p.DiscountPercent,
		TotalAmount:     p.TotalAmount,
		Status:          p.Status,
		CreatedAt:       createdAt,
	}
}
