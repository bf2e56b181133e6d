package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/azizikri/yeoubi-storefront/internal/cart"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type CartOpenRequest struct {
	Open bool `json:"open"`
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	IsOpen     bool              `json:"is_open"`
}

func newCartResponse(store *cart.Store) CartResponse {
	return CartResponse{
		Items:      nonNil(store.Items()),
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
		IsOpen:     store.IsOpen(),
	}
}

func (h *Handler) cartFor(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return nil, false
	}
	store, err := h.deps.Carts.Get(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return store, true
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}
	store.Clear()
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

// AddCartItem snapshots the current product into the cart. Inactive
// products cannot be added.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if !validQuantity(w, req.Quantity) {
		return
	}

	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}

	product, err := h.deps.Catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !product.IsActive {
		writeDomainError(w, domain.ErrNotFound)
		return
	}

	store.AddItem(cart.QuickAdd(*product, req.Size, req.Quantity))
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validQuantity(w, req.Quantity) {
		return
	}

	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}
	store.UpdateQuantity(req.ProductID, req.Size, req.Quantity)
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	store.RemoveItem(q.Get("product_id"), q.Get("size"))
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func (h *Handler) SetCartOpen(w http.ResponseWriter, r *http.Request) {
	var req CartOpenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, ok := h.cartFor(w, r)
	if !ok {
		return
	}
	store.SetOpen(req.Open)
	writeJSON(w, http.StatusOK, newCartResponse(store))
}

func validQuantity(w http.ResponseWriter, quantity int) bool {
	if quantity > domain.MaxLineQuantity {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("quantity must be at most %d", domain.MaxLineQuantity))
		return false
	}
	return true
}
