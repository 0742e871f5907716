package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sourpow/tbucks-server/internal/api/http/middleware"
	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// maxItemImageSize caps the multipart form when an item is created.
const maxItemImageSize = 10 << 20

// StoreService is the catalog and purchase surface the handlers need.
type StoreService interface {
	ListItems(ctx context.Context) ([]model.StoreItem, error)
	GetItemImage(ctx context.Context, itemID uuid.UUID) (io.ReadCloser, string, error)
	AddItem(ctx context.Context, params model.CreateItemParams) (model.StoreItem, error)
	Purchase(ctx context.Context, userID, itemID uuid.UUID) (model.Order, error)
}

// OrderService serves order history and fulfillment.
type OrderService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	MarkSeen(ctx context.Context, orderID uuid.UUID) (model.Order, error)
	Ship(ctx context.Context, orderID uuid.UUID, fulfillmentText string) (model.Order, error)
}

// StoreHandler serves the catalog, item images, purchases and the
// caller's order history.
type StoreHandler struct {
	store  StoreService
	orders OrderService
	logger *logger.Logger
}

func NewStoreHandler(store StoreService, orders OrderService, logger *logger.Logger) *StoreHandler {
	return &StoreHandler{store: store, orders: orders, logger: logger}
}

func (h *StoreHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StoreHandler) GetItemImage(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed item id")
		return
	}

	reader, contentType, err := h.store.GetItemImage(r.Context(), itemID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	defer reader.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = io.Copy(w, reader)
}

// AddItem creates a catalog entry from a multipart form carrying the
// item fields and its image.
func (h *StoreHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxItemImageSize); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "price must be an integer")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	item, err := h.store.AddItem(r.Context(), model.CreateItemParams{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		ImageData:   imageData,
		ImageType:   header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

type purchaseRequest struct {
	ItemID uuid.UUID `json:"itemId"`
}

func (h *StoreHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req purchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ItemID == uuid.Nil {
		writeErrorMessage(w, http.StatusBadRequest, "itemId is required")
		return
	}

	order, err := h.store.Purchase(r.Context(), identity.UserID, req.ItemID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListOrders returns the caller's own orders, newest first.
func (h *StoreHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
