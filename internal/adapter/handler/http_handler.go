package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/flash-item/internal/auth"
	"github.com/rl1809/flash-item/internal/core/domain"
)

// ItemService is what the HTTP API needs from the core.
type ItemService interface {
	Publish(ctx context.Context, item *domain.FlashItem) error
	BringOnline(ctx context.Context, itemID string) error
	TakeOffline(ctx context.Context, itemID string) error
	DecreaseStock(ctx context.Context, itemID string, quantity int64) (bool, error)
	IncreaseStock(ctx context.Context, itemID string, quantity int64) error
	IsAllowPlaceOrder(ctx context.Context, itemID string) bool
	ListItems(ctx context.Context, query *domain.ItemQuery) (*domain.PageResult, error)
	GetItem(ctx context.Context, itemID string) (*domain.FlashItem, error)
}

type HTTPHandler struct {
	items  ItemService
	health *HealthMonitor
	logger *zap.Logger
}

type StockHTTPRequest struct {
	Quantity int64 `json:"quantity"`
}

type StockHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type EligibilityHTTPResponse struct {
	ItemID  string `json:"item_id"`
	Allowed bool   `json:"allowed"`
}

func NewHTTPHandler(items ItemService, health *HealthMonitor, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{items: items, health: health, logger: logger}
}

// Router wires every route. Mutations need an operator or service token, reads any valid token.
func (h *HTTPHandler) Router(secret string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api/flash-items").Subrouter()
	api.Use(AuthMiddleware(secret))

	operator := RequireRole(auth.RoleOperator)
	stock := RequireRole(auth.RoleOperator, auth.RoleService)

	api.HandleFunc("", h.ListItems).Methods(http.MethodGet)
	api.Handle("", operator(http.HandlerFunc(h.Publish))).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.GetItem).Methods(http.MethodGet)
	api.Handle("/{id}/online", operator(http.HandlerFunc(h.BringOnline))).Methods(http.MethodPost)
	api.Handle("/{id}/offline", operator(http.HandlerFunc(h.TakeOffline))).Methods(http.MethodPost)
	api.Handle("/{id}/stock/decrease", stock(http.HandlerFunc(h.DecreaseStock))).Methods(http.MethodPost)
	api.Handle("/{id}/stock/increase", stock(http.HandlerFunc(h.IncreaseStock))).Methods(http.MethodPost)
	api.HandleFunc("/{id}/eligibility", h.Eligibility).Methods(http.MethodGet)

	return r
}

func (h *HTTPHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var item domain.FlashItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.items.Publish(r.Context(), &item); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *HTTPHandler) BringOnline(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.items.BringOnline)
}

func (h *HTTPHandler) TakeOffline(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.items.TakeOffline)
}

func (h *HTTPHandler) changeStatus(w http.ResponseWriter, r *http.Request, change func(context.Context, string) error) {
	id := mux.Vars(r)["id"]
	if err := change(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	item, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) DecreaseStock(w http.ResponseWriter, r *http.Request) {
	var req StockHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.items.DecreaseStock(r.Context(), mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, StockHTTPResponse{Success: false, Message: "sold out"})
		return
	}
	writeJSON(w, http.StatusOK, StockHTTPResponse{Success: true, Message: "stock decreased"})
}

func (h *HTTPHandler) IncreaseStock(w http.ResponseWriter, r *http.Request) {
	var req StockHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.items.IncreaseStock(r.Context(), mux.Vars(r)["id"], req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockHTTPResponse{Success: true, Message: "stock increased"})
}

func (h *HTTPHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	writeJSON(w, http.StatusOK, EligibilityHTTPResponse{
		ItemID:  id,
		Allowed: h.items.IsAllowPlaceOrder(r.Context(), id),
	})
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := &domain.ItemQuery{
		ActivityID: params.Get("activity_id"),
		Keyword:    params.Get("keyword"),
		Status:     domain.ItemStatus(params.Get("status")),
	}
	if query.Status != "" && !query.Status.Valid() {
		jsonError(w, http.StatusBadRequest, "unknown status")
		return
	}
	query.PageNumber, _ = strconv.Atoi(params.Get("page"))
	query.PageSize, _ = strconv.Atoi(params.Get("size"))

	page, err := h.items.ListItems(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
