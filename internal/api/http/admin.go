package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sourpow/tbucks-server/internal/logger"
)

// AdminHandler serves the fulfillment queue and balance gifts. Every
// route is behind the RequireAdmin middleware.
type AdminHandler struct {
	orders OrderService
	users  UserService
	logger *logger.Logger
}

func NewAdminHandler(orders OrderService, users UserService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{orders: orders, users: users, logger: logger}
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) MarkOrderSeen(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed order id")
		return
	}

	order, err := h.orders.MarkSeen(r.Context(), orderID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type shipRequest struct {
	FulfillmentText string `json:"fulfillmentText"`
}

func (h *AdminHandler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed order id")
		return
	}

	var req shipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.Ship(r.Context(), orderID, req.FulfillmentText)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type giftRequest struct {
	Amount int64 `json:"amount"`
}

func (h *AdminHandler) GiftBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed user id")
		return
	}

	var req giftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Gift(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
