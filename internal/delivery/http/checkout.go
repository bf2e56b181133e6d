package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/checkout"
	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type OpenCheckoutRequest struct {
	Selection []checkout.Selection `json:"selection"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

type SubmitCheckoutRequest struct {
	Customer domain.Customer `json:"customer"`
}

type SubmitCheckoutResponse struct {
	Receipt *checkout.OrderReceipt `json:"receipt"`
	Payment *checkout.PaymentView  `json:"payment"`
}

func (h *Handler) flowFor(w http.ResponseWriter, r *http.Request) (*checkout.Flow, bool) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return nil, false
	}
	flow, err := h.deps.Checkouts.Get(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return flow, true
}

// OpenCheckout starts the details step. An empty body checks out the whole
// cart.
func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	var req OpenCheckoutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	if err := flow.Open(req.Selection); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) ApplyCheckoutCoupon(w http.ResponseWriter, r *http.Request) {
	var req ApplyCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	if _, err := flow.ApplyCoupon(r.Context(), req.Code); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) RemoveCheckoutCoupon(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	flow.RemoveCoupon()
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req SubmitCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	receipt, err := flow.Submit(r.Context(), req.Customer)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := SubmitCheckoutResponse{Receipt: receipt}
	if pv, err := flow.Payment(); err == nil {
		resp.Payment = pv
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	pv, err := flow.Payment()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

// CompleteCheckout records that the customer says they paid.
func (h *Handler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	if err := flow.Complete(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}
	flow.Cancel()
	writeJSON(w, http.StatusOK, flow.View())
}

// StreamCountdown pushes the flow state every tick while the payment step
// is showing, then sends the final state and closes.
func (h *Handler) StreamCountdown(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.flowFor(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Countdown upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go discardReads(conn, cancel)

	ticker := time.NewTicker(h.countdownInterval)
	defer ticker.Stop()

	for {
		view := flow.View()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(view); err != nil {
			return
		}
		if view.Step != checkout.StepPayment {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "payment window closed"),
				time.Now().Add(writeWait))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
