package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/auth"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const maxUploadBytes = 10 << 20

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type ReadRequest struct {
	IsRead bool `json:"is_read"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type claimsKey struct{}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

func (h *Handler) adminRoutes(r chi.Router) {
	r.Get("/products", h.AdminListProducts)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Patch("/products/{id}/active", h.SetProductActive)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Post("/uploads", h.UploadImage)

	r.Get("/bookings", h.ListBookings)
	r.Get("/bookings/export.csv", h.ExportBookingsCSV)
	r.Get("/bookings/export.xlsx", h.ExportBookingsXLSX)
	r.Get("/bookings/stats", h.BookingStats)
	r.Patch("/bookings/{id}/status", h.UpdateBookingStatus)
	r.Delete("/bookings/{id}", h.DeleteBooking)

	r.Get("/coupons", h.ListCoupons)
	r.Post("/coupons", h.CreateCoupon)
	r.Patch("/coupons/{id}/active", h.SetCouponActive)
	r.Delete("/coupons/{id}", h.DeleteCoupon)

	r.Get("/offers", h.AdminListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Patch("/offers/{id}/active", h.SetOfferActive)
	r.Delete("/offers/{id}", h.DeleteOffer)

	r.Get("/messages", h.ListMessages)
	r.Get("/messages/unread-count", h.UnreadCount)
	r.Patch("/messages/{id}/read", h.SetMessageRead)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	r.Get("/feed", h.deps.Feed.ServeHTTP)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, expires, err := h.deps.Auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires})
}

// RequireAdmin rejects requests without a valid admin bearer token.
// Websocket handshakes may pass the token as ?access_token= instead, since
// browsers cannot set headers on them.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		claims, err := h.deps.Auth.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.ListAllProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req usecase.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.deps.Catalog.CreateProduct(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req usecase.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.deps.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.Catalog.SetProductActive(r.Context(), chi.URLParam(r, "id"), req.IsActive); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.deps.Media == nil {
		writeError(w, http.StatusServiceUnavailable, "image uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.deps.Media.UploadProductImage(r.Context(), header.Filename, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter, ok := bookingFilter(w, r)
	if !ok {
		return
	}
	bookings, err := h.deps.Bookings.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookings))
}

func (h *Handler) ExportBookingsCSV(w http.ResponseWriter, r *http.Request) {
	filter, ok := bookingFilter(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(usecase.ExportFilename(filter, "csv")))
	if err := h.deps.Bookings.ExportCSV(r.Context(), w, filter); err != nil {
		writeDomainError(w, err)
	}
}

func (h *Handler) ExportBookingsXLSX(w http.ResponseWriter, r *http.Request) {
	filter, ok := bookingFilter(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(usecase.ExportFilename(filter, "xlsx")))
	if err := h.deps.Bookings.ExportXLSX(r.Context(), w, filter); err != nil {
		writeDomainError(w, err)
	}
}

func (h *Handler) BookingStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	stats, err := h.deps.Bookings.DailyStats(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(stats))
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.Bookings.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Bookings.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.deps.Coupons.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(coupons))
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateCouponInput
	if !decodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.deps.Coupons.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

func (h *Handler) SetCouponActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.Coupons.SetActive(r.Context(), chi.URLParam(r, "id"), req.IsActive); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.deps.BackOffice.ListOffers(r.Context(), false)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(offers))
}

func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req usecase.OfferInput
	if !decodeJSON(w, r, &req) {
		return
	}
	offer, err := h.deps.BackOffice.CreateOffer(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (h *Handler) SetOfferActive(w http.ResponseWriter, r *http.Request) {
	var req ActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.BackOffice.SetOfferActive(r.Context(), chi.URLParam(r, "id"), req.IsActive); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.BackOffice.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.deps.BackOffice.ListMessages(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(messages))
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.deps.BackOffice.UnreadCount(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) SetMessageRead(w http.ResponseWriter, r *http.Request) {
	var req ReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.deps.BackOffice.SetMessageRead(r.Context(), chi.URLParam(r, "id"), req.IsRead); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req usecase.SettingsInput
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.deps.BackOffice.UpdateSettings(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func bookingFilter(w http.ResponseWriter, r *http.Request) (domain.BookingFilter, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return domain.BookingFilter{}, true
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return domain.BookingFilter{}, false
	}
	return domain.BookingFilter{Day: &day}, true
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
