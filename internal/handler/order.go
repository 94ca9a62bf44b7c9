package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/suyanik/Einkauflist/internal/auth"
	"github.com/suyanik/Einkauflist/internal/model"
	"github.com/suyanik/Einkauflist/internal/notify"
	"github.com/suyanik/Einkauflist/internal/store"
	"github.com/suyanik/Einkauflist/internal/websocket"
)

type OrderHandler struct {
	orders   *store.OrderStore
	hub      *websocket.Hub
	notifier *notify.Service
	logger   *slog.Logger
}

func NewOrderHandler(orders *store.OrderStore, hub *websocket.Hub, notifier *notify.Service, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, hub: hub, notifier: notifier, logger: logger}
}

type cartLine struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

type createOrderRequest struct {
	CartItems       []cartLine `json:"cartItems"`
	CreatedByUserID string     `json:"createdByUserId"`
}

// Create opens a PENDING order from the submitted cart. Admin devices are
// notified after the commit; notification failures never fail the request.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Every failure on this route maps to 500, a body that does not parse
	// included; existing clients only branch on the success flag here.
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, "Sipariş oluşturulamadı")
		return
	}

	createdBy := req.CreatedByUserID
	if createdBy == "" {
		if ac, ok := auth.FromContext(r.Context()); ok {
			createdBy = ac.UserID
		}
	}

	cart := make([]store.CartItem, 0, len(req.CartItems))
	for _, line := range req.CartItems {
		cart = append(cart, store.CartItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := h.orders.Create(createdBy, cart)
	if err != nil {
		h.logger.Error("create order", "error", err)
		writeError(w, http.StatusInternalServerError, "Sipariş oluşturulamadı")
		return
	}

	if h.notifier != nil {
		go h.notifier.OrderCreated(order)
	}
	if h.hub != nil {
		h.hub.Broadcast(websocket.OrderCreated(order.ID, len(order.Items)))
	}

	writeSuccess(w, map[string]any{"orderId": order.ID})
}

func (h *OrderHandler) Pending(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListPending()
	if err != nil {
		h.logger.Error("list pending orders", "error", err)
		writeError(w, http.StatusInternalServerError, "Siparişler getirilemedi")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeSuccess(w, map[string]any{"data": orders})
}

type itemUpdate struct {
	ItemID string              `json:"itemId"`
	Price  decimal.NullDecimal `json:"price"`
}

type completeOrderRequest struct {
	OrderID      string       `json:"orderId"`
	ItemsUpdates []itemUpdate `json:"itemsUpdates"`
}

// Complete writes purchase prices and closes the order in one transaction.
// A null or missing price counts as zero.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, "Sipariş tamamlanamadı")
		return
	}

	updates := make([]store.PriceUpdate, 0, len(req.ItemsUpdates))
	for _, u := range req.ItemsUpdates {
		price := decimal.Zero
		if u.Price.Valid {
			price = u.Price.Decimal
		}
		updates = append(updates, store.PriceUpdate{ItemID: u.ItemID, Price: price})
	}

	order, err := h.orders.Complete(req.OrderID, updates)
	if err != nil {
		h.logger.Error("complete order", "order_id", req.OrderID, "error", err)
		writeError(w, http.StatusInternalServerError, "Sipariş tamamlanamadı")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.OrderCompleted(order.ID))
	}

	writeSuccess(w, map[string]any{"data": order})
}
