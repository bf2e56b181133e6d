package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/cart"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/payment"
)

type Step string

const (
	StepDetails Step = "details"
	StepPayment Step = "payment"
)

type Selection struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
}

type OrderRequest struct {
	SessionID string
	Items     []domain.CartItem
	Customer  domain.Customer
	Coupon    *domain.AppliedCoupon
}

type OrderReceipt struct {
	BookingIDs []string `json:"booking_ids"`
	Totals     Totals   `json:"totals"`
}

type PaymentAssertion struct {
	SessionID    string
	BookingIDs   []string
	Amount       string
	CustomerName string
}

type Submitter interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderReceipt, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, code string) (*domain.AppliedCoupon, error)
}

type PaymentNotifier interface {
	AssertPayment(ctx context.Context, a PaymentAssertion) error
}

type Deps struct {
	Submitter Submitter
	Validator CouponValidator
	Notifier  PaymentNotifier
	Payment   payment.Config
}

type Options struct {
	CountdownSeconds int
	TickInterval     time.Duration
}

type View struct {
	SessionID   string                `json:"session_id"`
	Open        bool                  `json:"open"`
	Step        Step                  `json:"step"`
	SecondsLeft int                   `json:"seconds_left"`
	Items       []domain.CartItem     `json:"items"`
	Totals      Totals                `json:"totals"`
	Coupon      *domain.AppliedCoupon `json:"coupon"`
	Submitting  bool                  `json:"submitting"`
}

type PaymentView struct {
	payment.Handoff
	SecondsLeft int      `json:"seconds_left"`
	BookingIDs  []string `json:"booking_ids"`
}

// Flow drives one session's checkout: details -> payment -> closed. A closed
// flow is back on the details step with Open false.
type Flow struct {
	mu         sync.Mutex
	sessionID  string
	cart       *cart.Store
	deps       Deps
	countdown  *Countdown
	open       bool
	step       Step
	selection  []Selection
	coupon     *domain.AppliedCoupon
	customer   domain.Customer
	submitting bool
	receipt    *OrderReceipt
}

func NewFlow(sessionID string, store *cart.Store, deps Deps, opts Options) *Flow {
	f := &Flow{
		sessionID: sessionID,
		cart:      store,
		deps:      deps,
		step:      StepDetails,
	}
	f.countdown = NewCountdown(opts.CountdownSeconds, opts.TickInterval, f.expire)
	return f
}

// Open shows the details step for the whole cart (nil selection) or a subset.
func (f *Flow) Open(selection []Selection) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step == StepPayment {
		return domain.ErrInvalidStep
	}
	f.open = true
	f.step = StepDetails
	f.selection = append([]Selection(nil), selection...)
	return nil
}

// ApplyCoupon validates code and replaces any coupon already applied. Blank
// input is ignored.
func (f *Flow) ApplyCoupon(ctx context.Context, code string) (*domain.AppliedCoupon, error) {
	f.mu.Lock()
	if f.step != StepDetails {
		f.mu.Unlock()
		return nil, domain.ErrInvalidStep
	}
	f.mu.Unlock()

	applied, err := f.deps.Validator.Validate(ctx, code)
	if err != nil || applied == nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepDetails {
		return nil, domain.ErrInvalidStep
	}
	f.coupon = applied
	return applied, nil
}

func (f *Flow) RemoveCoupon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coupon = nil
}

func (f *Flow) Submit(ctx context.Context, customer domain.Customer) (*OrderReceipt, error) {
	f.mu.Lock()
	if f.step != StepDetails {
		f.mu.Unlock()
		return nil, domain.ErrInvalidStep
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, domain.ErrSubmitInProgress
	}
	if err := customer.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	items := f.itemsLocked()
	if len(items) == 0 {
		f.mu.Unlock()
		return nil, domain.ErrEmptyCart
	}
	var coupon *domain.AppliedCoupon
	if f.coupon != nil {
		c := *f.coupon
		coupon = &c
	}
	f.submitting = true
	f.mu.Unlock()

	receipt, err := f.deps.Submitter.PlaceOrder(ctx, OrderRequest{
		SessionID: f.sessionID,
		Items:     items,
		Customer:  customer,
		Coupon:    coupon,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		if isCouponRejection(err) {
			f.coupon = nil
		}
		return nil, err
	}

	f.customer = customer
	f.receipt = receipt
	f.open = true
	f.step = StepPayment
	f.countdown.Reset()
	f.countdown.Start()
	return receipt, nil
}

func isCouponRejection(err error) bool {
	return errors.Is(err, domain.ErrCouponInvalid) ||
		errors.Is(err, domain.ErrCouponLimitReached) ||
		errors.Is(err, domain.ErrCouponExpired)
}

func (f *Flow) Payment() (*PaymentView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment || f.receipt == nil {
		return nil, domain.ErrInvalidStep
	}
	return &PaymentView{
		Handoff:     f.deps.Payment.Handoff(f.receipt.Totals.Total, f.customer.Name),
		SecondsLeft: f.countdown.Remaining(),
		BookingIDs:  append([]string(nil), f.receipt.BookingIDs...),
	}, nil
}

// Complete records the customer's claim that they paid. Nothing is verified;
// the bookings stay for manual reconciliation.
func (f *Flow) Complete(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepPayment || f.receipt == nil {
		f.mu.Unlock()
		return domain.ErrInvalidStep
	}
	assertion := PaymentAssertion{
		SessionID:    f.sessionID,
		BookingIDs:   append([]string(nil), f.receipt.BookingIDs...),
		Amount:       payment.FormatAmount(f.receipt.Totals.Total),
		CustomerName: f.customer.Name,
	}

	f.cart.Clear()
	f.closeLocked()
	f.customer = domain.Customer{}
	f.coupon = nil
	f.selection = nil
	f.mu.Unlock()

	if f.deps.Notifier != nil {
		if err := f.deps.Notifier.AssertPayment(ctx, assertion); err != nil {
			log.Printf("payment assertion for session %s not delivered: %v", f.sessionID, err)
		}
	}
	return nil
}

func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

// busy reports whether the flow holds state a sweep must not drop: a
// pending order submission or a running payment window.
func (f *Flow) busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting || f.step == StepPayment
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.itemsLocked()
	var coupon *domain.AppliedCoupon
	if f.coupon != nil {
		c := *f.coupon
		coupon = &c
	}

	totals := ComputeTotals(items, DiscountPercent(f.coupon))
	if f.step == StepPayment && f.receipt != nil {
		totals = f.receipt.Totals
	}

	return View{
		SessionID:   f.sessionID,
		Open:        f.open,
		Step:        f.step,
		SecondsLeft: f.countdown.Remaining(),
		Items:       items,
		Totals:      totals,
		Coupon:      coupon,
		Submitting:  f.submitting,
	}
}

func (f *Flow) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()

	// A restarted countdown has a fresh remaining value; only a countdown
	// that actually ran out may close the flow.
	if f.step != StepPayment || f.countdown.Remaining() != 0 {
		return
	}
	log.Printf("payment window expired for session %s", f.sessionID)
	f.closeLocked()
}

func (f *Flow) closeLocked() {
	f.countdown.Reset()
	f.step = StepDetails
	f.open = false
	f.receipt = nil
}

func (f *Flow) itemsLocked() []domain.CartItem {
	items := f.cart.Items()
	if len(f.selection) == 0 {
		return items
	}

	selected := make([]domain.CartItem, 0, len(f.selection))
	for _, item := range items {
		for _, sel := range f.selection {
			if item.Matches(sel.ProductID, sel.Size) {
				selected = append(selected, item)
				break
			}
		}
	}
	return selected
}
