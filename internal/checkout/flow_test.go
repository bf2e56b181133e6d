package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/cart"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []OrderRequest
	err   error
	block chan struct{}
}

func (s *fakeSubmitter) PlaceOrder(_ context.Context, req OrderRequest) (*OrderReceipt, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, len(req.Items))
	for i := range req.Items {
		ids[i] = "booking-" + req.Items[i].Product.ID
	}
	return &OrderReceipt{
		BookingIDs: ids,
		Totals:     ComputeTotals(req.Items, DiscountPercent(req.Coupon)),
	}, nil
}

func (s *fakeSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeValidator struct {
	coupons map[string]int
}

func (v *fakeValidator) Validate(_ context.Context, code string) (*domain.AppliedCoupon, error) {
	code = domain.NormalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}
	pct, ok := v.coupons[code]
	if !ok {
		return nil, domain.ErrCouponInvalid
	}
	return &domain.AppliedCoupon{Code: code, DiscountPercent: pct}, nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	assertions []PaymentAssertion
}

func (n *fakeNotifier) AssertPayment(_ context.Context, a PaymentAssertion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assertions = append(n.assertions, a)
	return nil
}

var customer = domain.Customer{
	Name:    "Asha Nair",
	Phone:   "9876543210",
	Email:   "asha@example.com",
	Address: "12 Marine Drive, Kochi",
}

type fixture struct {
	flow      *Flow
	store     *cart.Store
	submitter *fakeSubmitter
	notifier  *fakeNotifier
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := cart.NewStore([]domain.CartItem{line("a", "M", "1000", 2)})
	submitter := &fakeSubmitter{}
	notifier := &fakeNotifier{}
	deps := Deps{
		Submitter: submitter,
		Validator: &fakeValidator{coupons: map[string]int{"SAVE10": 10, "HALF": 50}},
		Notifier:  notifier,
		Payment: payment.Config{
			PayeeVPA:  "shop@upi",
			PayeeName: "YEOUBI",
			Currency:  "INR",
			QRBaseURL: "https://qr.example/",
		},
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = time.Hour
	}
	f := NewFlow("sess-1", store, deps, opts)
	require.NoError(t, f.Open(nil))
	t.Cleanup(f.Cancel)
	return &fixture{flow: f, store: store, submitter: submitter, notifier: notifier}
}

func TestFlow_ApplyCouponAndTotals(t *testing.T) {
	fx := newFixture(t, Options{})
	ctx := context.Background()

	applied, err := fx.flow.ApplyCoupon(ctx, "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", applied.Code)

	view := fx.flow.View()
	assert.Equal(t, "200", view.Totals.Discount.String())
	assert.Equal(t, "1800", view.Totals.Total.String())

	_, err = fx.flow.ApplyCoupon(ctx, "HALF")
	require.NoError(t, err)
	view = fx.flow.View()
	assert.Equal(t, "HALF", view.Coupon.Code)
	assert.Equal(t, "1000", view.Totals.Total.String())
}

func TestFlow_ApplyCouponBlankIsNoop(t *testing.T) {
	fx := newFixture(t, Options{})
	ctx := context.Background()

	_, err := fx.flow.ApplyCoupon(ctx, "SAVE10")
	require.NoError(t, err)

	applied, err := fx.flow.ApplyCoupon(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, "SAVE10", fx.flow.View().Coupon.Code)
}

func TestFlow_ApplyCouponRejected(t *testing.T) {
	fx := newFixture(t, Options{})

	_, err := fx.flow.ApplyCoupon(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
	assert.Nil(t, fx.flow.View().Coupon)
}

func TestFlow_SubmitBlankNameMakesNoCall(t *testing.T) {
	fx := newFixture(t, Options{})
	before := fx.store.Items()

	c := customer
	c.Name = ""
	_, err := fx.flow.Submit(context.Background(), c)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, fx.submitter.callCount())
	assert.Equal(t, before, fx.store.Items())
	assert.Equal(t, StepDetails, fx.flow.View().Step)
}

func TestFlow_SubmitEmptyCart(t *testing.T) {
	fx := newFixture(t, Options{})
	fx.store.Clear()

	_, err := fx.flow.Submit(context.Background(), customer)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, 0, fx.submitter.callCount())
}

func TestFlow_SubmitSuccessMovesToPayment(t *testing.T) {
	fx := newFixture(t, Options{CountdownSeconds: 60})
	ctx := context.Background()

	_, err := fx.flow.ApplyCoupon(ctx, "SAVE10")
	require.NoError(t, err)

	receipt, err := fx.flow.Submit(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []string{"booking-a"}, receipt.BookingIDs)

	view := fx.flow.View()
	assert.Equal(t, StepPayment, view.Step)
	assert.True(t, view.Open)
	assert.Equal(t, 60, view.SecondsLeft)
	assert.True(t, fx.flow.countdown.Running())

	req := fx.submitter.calls[0]
	assert.Equal(t, "SAVE10", req.Coupon.Code)
	assert.Equal(t, "sess-1", req.SessionID)

	pay, err := fx.flow.Payment()
	require.NoError(t, err)
	assert.Equal(t, "1800.00", pay.Amount)
	assert.Equal(t, "upi://pay?pa=shop@upi&pn=YEOUBI&am=1800.00&tn=Asha%20Nair&cu=INR", pay.Link)
	assert.Len(t, pay.AppLinks, 3)

	_, err = fx.flow.ApplyCoupon(ctx, "HALF")
	assert.ErrorIs(t, err, domain.ErrInvalidStep)
}

func TestFlow_SubmitFailureKeepsDetailsAndCart(t *testing.T) {
	fx := newFixture(t, Options{})
	fx.submitter.err = errors.New("insert failed")

	_, err := fx.flow.Submit(context.Background(), customer)
	require.ErrorContains(t, err, "insert failed")

	view := fx.flow.View()
	assert.Equal(t, StepDetails, view.Step)
	assert.False(t, view.Submitting)
	assert.Equal(t, 2, fx.store.TotalItems())

	fx.submitter.err = nil
	_, err = fx.flow.Submit(context.Background(), customer)
	require.NoError(t, err)
}

func TestFlow_SubmitCouponNoLongerValidDropsCoupon(t *testing.T) {
	fx := newFixture(t, Options{})
	ctx := context.Background()

	_, err := fx.flow.ApplyCoupon(ctx, "SAVE10")
	require.NoError(t, err)
	fx.submitter.err = domain.ErrCouponLimitReached

	_, err = fx.flow.Submit(ctx, customer)
	require.ErrorIs(t, err, domain.ErrCouponLimitReached)

	view := fx.flow.View()
	assert.Equal(t, StepDetails, view.Step)
	assert.Nil(t, view.Coupon)
	assert.Equal(t, "2000", view.Totals.Total.String())
}

func TestFlow_SubmitWhileInFlight(t *testing.T) {
	fx := newFixture(t, Options{})
	fx.submitter.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(context.Background(), customer)
		done <- err
	}()

	require.Eventually(t, func() bool { return fx.flow.View().Submitting }, time.Second, time.Millisecond)

	_, err := fx.flow.Submit(context.Background(), customer)
	assert.ErrorIs(t, err, domain.ErrSubmitInProgress)

	close(fx.submitter.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fx.submitter.callCount())
}

func TestFlow_SubmitSelectedSubset(t *testing.T) {
	fx := newFixture(t, Options{})
	fx.store.AddItem(line("b", "S", "500", 1))
	require.NoError(t, fx.flow.Open([]Selection{{ProductID: "b", Size: "S"}}))

	receipt, err := fx.flow.Submit(context.Background(), customer)
	require.NoError(t, err)

	assert.Len(t, fx.submitter.calls[0].Items, 1)
	assert.Equal(t, "500", receipt.Totals.Total.String())
}

func TestFlow_CountdownExpiryClosesFlow(t *testing.T) {
	fx := newFixture(t, Options{CountdownSeconds: 3, TickInterval: time.Millisecond})

	_, err := fx.flow.Submit(context.Background(), customer)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !fx.flow.View().Open
	}, time.Second, time.Millisecond)

	view := fx.flow.View()
	assert.Equal(t, StepDetails, view.Step)
	assert.Equal(t, 3, view.SecondsLeft)
	assert.Equal(t, 1, fx.submitter.callCount())
	assert.Equal(t, 2, fx.store.TotalItems())

	_, err = fx.flow.Payment()
	assert.ErrorIs(t, err, domain.ErrInvalidStep)
}

func TestFlow_CompleteClearsCart(t *testing.T) {
	fx := newFixture(t, Options{})
	ctx := context.Background()

	_, err := fx.flow.ApplyCoupon(ctx, "SAVE10")
	require.NoError(t, err)
	_, err = fx.flow.Submit(ctx, customer)
	require.NoError(t, err)

	require.NoError(t, fx.flow.Complete(ctx))

	assert.Empty(t, fx.store.Items())
	view := fx.flow.View()
	assert.False(t, view.Open)
	assert.Equal(t, StepDetails, view.Step)
	assert.Nil(t, view.Coupon)
	assert.Equal(t, 60, view.SecondsLeft)
	assert.False(t, fx.flow.countdown.Running())

	require.Len(t, fx.notifier.assertions, 1)
	a := fx.notifier.assertions[0]
	assert.Equal(t, "1800.00", a.Amount)
	assert.Equal(t, []string{"booking-a"}, a.BookingIDs)
	assert.Equal(t, "Asha Nair", a.CustomerName)
}

func TestFlow_CompleteOutsidePayment(t *testing.T) {
	fx := newFixture(t, Options{})

	err := fx.flow.Complete(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidStep)
	assert.Equal(t, 2, fx.store.TotalItems())
}

func TestFlow_CancelDuringPayment(t *testing.T) {
	fx := newFixture(t, Options{})
	_, err := fx.flow.Submit(context.Background(), customer)
	require.NoError(t, err)

	fx.flow.Cancel()

	view := fx.flow.View()
	assert.False(t, view.Open)
	assert.Equal(t, StepDetails, view.Step)
	assert.Equal(t, 2, fx.store.TotalItems())
	assert.False(t, fx.flow.countdown.Running())
}
