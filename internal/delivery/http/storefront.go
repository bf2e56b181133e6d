package http

import (
	"net/http"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type ValidateCouponRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.ListProducts(r.Context(), r.URL.Query().Get("section"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.deps.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !product.IsActive {
		writeDomainError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.deps.Catalog.ListSections(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sections))
}

func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.deps.BackOffice.ListOffers(r.Context(), true)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(offers))
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.deps.BackOffice.Settings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req usecase.MessageInput
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.deps.BackOffice.SendMessage(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ValidateCoupon checks a code without applying it to any checkout. A blank
// code yields a null coupon.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	applied, err := h.deps.Coupons.Validate(r.Context(), req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupon": applied})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
