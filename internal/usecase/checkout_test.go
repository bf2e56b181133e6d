package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/checkout"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/shopspring/decimal"
)

type mockTxStore struct {
	inserted    []repository.InsertBookingParams
	insertErrAt int
	committed   bool
}

type txQuerier struct {
	store   *mockTxStore
	pending []repository.InsertBookingParams
}

func (q *txQuerier) InsertBooking(ctx context.Context, arg repository.InsertBookingParams) error {
	if q.store.insertErrAt > 0 && len(q.pending)+1 == q.store.insertErrAt {
		return errors.New("insert failed")
	}
	q.pending = append(q.pending, arg)
	return nil
}

func (q *txQuerier) IncrementCouponUsage(ctx context.Context, code string) (int64, error) {
	return 1, nil
}

func (m *mockTxStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	q := &txQuerier{store: m}
	if err := fn(q); err != nil {
		return err
	}
	m.inserted = append(m.inserted, q.pending...)
	m.committed = true
	return nil
}

type mockRedeemer struct {
	codes       []string
	err         error
	discounts   map[string]int
	validateErr error
}

// Validate accepts every code at 10% unless discounts or validateErr say
// otherwise.
func (m *mockRedeemer) Validate(ctx context.Context, code string) (*domain.AppliedCoupon, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	pct := 10
	if p, ok := m.discounts[code]; ok {
		pct = p
	}
	return &domain.AppliedCoupon{Code: code, DiscountPercent: pct}, nil
}

func (m *mockRedeemer) Redeem(ctx context.Context, code string) error {
	m.codes = append(m.codes, code)
	return m.err
}

type mockPublisher struct {
	placed   []domain.BookingPlacedEvent
	asserted []domain.PaymentAssertedEvent
	err      error
}

func (m *mockPublisher) PublishBookingPlaced(ctx context.Context, event domain.BookingPlacedEvent) error {
	m.placed = append(m.placed, event)
	return m.err
}

func (m *mockPublisher) PublishPaymentAsserted(ctx context.Context, event domain.PaymentAssertedEvent) error {
	m.asserted = append(m.asserted, event)
	return m.err
}

var testCustomer = domain.Customer{
	Name:    "Asha Nair",
	Phone:   "9876543210",
	Email:   "asha@example.com",
	Address: "12 Marine Drive, Kochi",
}

func cartLine(id, price string, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  domain.ProductSnapshot{ID: id, Name: "Tee " + id, Price: decimal.RequireFromString(price)},
		Size:     "M",
		Quantity: qty,
	}
}

func newCheckoutService(store *mockTxStore, redeemer *mockRedeemer, pub *mockPublisher) *CheckoutService {
	svc := NewCheckoutService(store, redeemer, pub)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
	return svc
}

func TestPlaceOrder_WritesOneBookingPerLine(t *testing.T) {
	store := &mockTxStore{}
	redeemer := &mockRedeemer{}
	pub := &mockPublisher{}
	svc := newCheckoutService(store, redeemer, pub)

	customer := testCustomer
	customer.Remarks = "  gift wrap  "
	receipt, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		SessionID: "sess-1",
		Items:     []domain.CartItem{cartLine("a", "1000", 2), cartLine("b", "500", 1)},
		Customer:  customer,
		Coupon:    &domain.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(store.inserted) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(store.inserted))
	}
	first := store.inserted[0]
	if first.Status != domain.BookingStatusPending || first.DiscountPercent != 10 {
		t.Fatalf("unexpected booking %+v", first)
	}
	if *first.CouponCode != "SAVE10" || *first.Remarks != "gift wrap" {
		t.Fatalf("unexpected coupon/remarks on booking: %v %v", *first.CouponCode, *first.Remarks)
	}
	if first.TotalAmount.String() != "1800" || store.inserted[1].TotalAmount.String() != "450" {
		t.Fatalf("unexpected line totals %s %s", first.TotalAmount, store.inserted[1].TotalAmount)
	}
	if receipt.Totals.Total.String() != "2250" {
		t.Fatalf("expected total 2250, got %s", receipt.Totals.Total)
	}
	if len(receipt.BookingIDs) != 2 || receipt.BookingIDs[0] != first.ID {
		t.Fatalf("unexpected booking ids %v", receipt.BookingIDs)
	}

	if len(redeemer.codes) != 1 || redeemer.codes[0] != "SAVE10" {
		t.Fatalf("expected one redemption, got %v", redeemer.codes)
	}
	if len(pub.placed) != 1 || len(pub.placed[0].Bookings) != 2 {
		t.Fatalf("expected one booking placed event with 2 bookings, got %+v", pub.placed)
	}
}

func TestPlaceOrder_ValidationBeforeStore(t *testing.T) {
	store := &mockTxStore{}
	svc := newCheckoutService(store, &mockRedeemer{}, &mockPublisher{})

	customer := testCustomer
	customer.Email = " "
	_, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 1)},
		Customer: customer,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), checkout.OrderRequest{Customer: testCustomer})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	if store.committed {
		t.Fatal("store must not be touched on validation failure")
	}
}

func TestPlaceOrder_InsertFailureIsAllOrNothing(t *testing.T) {
	store := &mockTxStore{insertErrAt: 2}
	redeemer := &mockRedeemer{}
	pub := &mockPublisher{}
	svc := newCheckoutService(store, redeemer, pub)

	_, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 1), cartLine("b", "500", 1)},
		Customer: testCustomer,
		Coupon:   &domain.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.inserted) != 0 {
		t.Fatalf("expected no committed bookings, got %d", len(store.inserted))
	}
	if len(redeemer.codes) != 0 || len(pub.placed) != 0 {
		t.Fatal("no side effects expected after a failed insert")
	}
}

func TestPlaceOrder_SideEffectFailuresDoNotFailOrder(t *testing.T) {
	store := &mockTxStore{}
	svc := newCheckoutService(store, &mockRedeemer{err: errors.New("redeem failed")}, &mockPublisher{err: errors.New("broker down")})

	_, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 1)},
		Customer: testCustomer,
		Coupon:   &domain.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
	})
	if err != nil {
		t.Fatalf("expected order to succeed, got %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(store.inserted))
	}
}

func TestPlaceOrder_NoCouponLeavesCodeEmpty(t *testing.T) {
	store := &mockTxStore{}
	redeemer := &mockRedeemer{}
	svc := newCheckoutService(store, redeemer, &mockPublisher{})

	_, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 2)},
		Customer: testCustomer,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b := store.inserted[0]
	if b.CouponCode != nil || b.Remarks != nil || b.DiscountPercent != 0 {
		t.Fatalf("unexpected booking %+v", b)
	}
	if b.TotalAmount.String() != "2000" {
		t.Fatalf("expected 2000, got %s", b.TotalAmount)
	}
	if len(redeemer.codes) != 0 {
		t.Fatal("no redemption expected without coupon")
	}
}

func TestAssertPayment_Publishes(t *testing.T) {
	pub := &mockPublisher{}
	svc := newCheckoutService(&mockTxStore{}, &mockRedeemer{}, pub)

	err := svc.AssertPayment(context.Background(), checkout.PaymentAssertion{
		SessionID:    "sess-1",
		BookingIDs:   []string{"b1"},
		Amount:       "1800.00",
		CustomerName: "Asha",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pub.asserted) != 1 || pub.asserted[0].Amount != "1800.00" || !pub.asserted[0].AssertedAt.Equal(fixedNow) {
		t.Fatalf("unexpected events %+v", pub.asserted)
	}
}

func TestPlaceOrder_RevalidatesCoupon(t *testing.T) {
	store := &mockTxStore{}
	redeemer := &mockRedeemer{validateErr: domain.ErrCouponInvalid}
	pub := &mockPublisher{}
	svc := newCheckoutService(store, redeemer, pub)

	_, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 1)},
		Customer: testCustomer,
		Coupon:   &domain.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
	})
	if !errors.Is(err, domain.ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid, got %v", err)
	}
	if store.committed || len(redeemer.codes) != 0 || len(pub.placed) != 0 {
		t.Fatal("a rejected coupon must not write bookings")
	}
}

func TestPlaceOrder_UsesCurrentDiscount(t *testing.T) {
	store := &mockTxStore{}
	svc := newCheckoutService(store, &mockRedeemer{discounts: map[string]int{"SAVE10": 5}}, &mockPublisher{})

	receipt, err := svc.PlaceOrder(context.Background(), checkout.OrderRequest{
		Items:    []domain.CartItem{cartLine("a", "1000", 2)},
		Customer: testCustomer,
		Coupon:   &domain.AppliedCoupon{Code: "SAVE10", DiscountPercent: 10},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.inserted[0].DiscountPercent != 5 || store.inserted[0].TotalAmount.String() != "1900" {
		t.Fatalf("unexpected booking %+v", store.inserted[0])
	}
	if receipt.Totals.Total.String() != "1900" {
		t.Fatalf("expected total 1900, got %s", receipt.Totals.Total)
	}
}
