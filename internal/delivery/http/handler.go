package http

import (
	"context"
	"io"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/auth"
	"github.com/azizikri/yeoubi-storefront/internal/cart"
	"github.com/azizikri/yeoubi-storefront/internal/checkout"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	ListProducts(ctx context.Context, sectionID string) ([]domain.Product, error)
	ListAllProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListSections(ctx context.Context) ([]domain.Section, error)
	CreateProduct(ctx context.Context, in usecase.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in usecase.ProductInput) (*domain.Product, error)
	SetProductActive(ctx context.Context, id string, active bool) error
	DeleteProduct(ctx context.Context, id string) error
}

type CouponService interface {
	Validate(ctx context.Context, code string) (*domain.AppliedCoupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Create(ctx context.Context, in usecase.CreateCouponInput) (*domain.Coupon, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type BookingService interface {
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	DailyStats(ctx context.Context, days int) ([]domain.DailyStat, error)
	ExportCSV(ctx context.Context, w io.Writer, filter domain.BookingFilter) error
	ExportXLSX(ctx context.Context, w io.Writer, filter domain.BookingFilter) error
}

type BackOfficeService interface {
	SendMessage(ctx context.Context, in usecase.MessageInput) (*domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	SetMessageRead(ctx context.Context, id string, read bool) error
	UnreadCount(ctx context.Context) (int, error)
	ListOffers(ctx context.Context, activeOnly bool) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, in usecase.OfferInput) (*domain.Offer, error)
	SetOfferActive(ctx context.Context, id string, active bool) error
	DeleteOffer(ctx context.Context, id string) error
	Settings(ctx context.Context) (*domain.SiteSettings, error)
	UpdateSettings(ctx context.Context, in usecase.SettingsInput) (*domain.SiteSettings, error)
}

type MediaService interface {
	UploadProductImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Authenticator interface {
	Login(email, password string) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

type CartSessions interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
}

type CheckoutFlows interface {
	Get(ctx context.Context, sessionID string) (*checkout.Flow, error)
}

// Deps groups everything the handler serves. Media may be nil when object
// storage is not configured.
type Deps struct {
	Catalog    CatalogService
	Coupons    CouponService
	Bookings   BookingService
	BackOffice BackOfficeService
	Media      MediaService
	Auth       Authenticator
	Carts      CartSessions
	Checkouts  CheckoutFlows
	Feed       *FeedHub
}

type Handler struct {
	deps Deps

	// countdownInterval paces the checkout countdown stream.
	countdownInterval time.Duration
}

func NewHandler(deps Deps) *Handler {
	if deps.Feed == nil {
		deps.Feed = NewFeedHub()
	}
	return &Handler{deps: deps, countdownInterval: time.Second}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/sections", h.ListSections)
		r.Get("/offers", h.ListOffers)
		r.Get("/settings", h.GetSettings)
		r.Post("/messages", h.SendMessage)
		r.Post("/coupons/validate", h.ValidateCoupon)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/items", h.AddCartItem)
			r.Patch("/cart/items", h.UpdateCartItem)
			r.Delete("/cart/items", h.RemoveCartItem)
			r.Put("/cart/open", h.SetCartOpen)

			r.Post("/checkout", h.OpenCheckout)
			r.Get("/checkout", h.GetCheckout)
			r.Post("/checkout/coupon", h.ApplyCheckoutCoupon)
			r.Delete("/checkout/coupon", h.RemoveCheckoutCoupon)
			r.Post("/checkout/submit", h.SubmitCheckout)
			r.Get("/checkout/payment", h.GetPayment)
			r.Post("/checkout/paid", h.CompleteCheckout)
			r.Post("/checkout/cancel", h.CancelCheckout)
			r.Get("/checkout/countdown", h.StreamCountdown)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				h.adminRoutes(r)
			})
		})
	})
}
