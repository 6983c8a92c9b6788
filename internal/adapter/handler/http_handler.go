package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/core/domain"
	"github.com/ljourdain/atelier-shop/internal/core/service"
	"github.com/ljourdain/atelier-shop/internal/logging"
	"github.com/ljourdain/atelier-shop/internal/metrics"
	"github.com/ljourdain/atelier-shop/internal/port"
)

const maxWebhookBodyBytes = 64 << 10

type HTTPHandler struct {
	orders   *service.OrderService
	payments *service.PaymentService
	pricing  *service.PricingCalculator
	catalog  port.CatalogRepository
	metrics  *metrics.ServerMetrics
}

// NewHTTPHandler builds the HTTP surface. m may be nil to disable
// instrumentation.
func NewHTTPHandler(
	orders *service.OrderService,
	payments *service.PaymentService,
	pricing *service.PricingCalculator,
	catalog port.CatalogRepository,
	m *metrics.ServerMetrics,
) *HTTPHandler {
	return &HTTPHandler{
		orders:   orders,
		payments: payments,
		pricing:  pricing,
		catalog:  catalog,
		metrics:  m,
	}
}

func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products/latest", h.instrument("latest_products", h.LatestProducts))
		r.Post("/products/search", h.instrument("search_products", h.SearchProducts))
		r.Get("/products/{category}/{slug}", h.instrument("product_detail", h.ProductDetail))
		r.Get("/categories/{slug}", h.instrument("category_detail", h.CategoryDetail))

		r.Post("/webhooks/payment", h.instrument("payment_webhook", h.PaymentWebhook))

		r.Group(func(r chi.Router) {
			r.Use(AuthContext)
			r.Get("/orders", h.instrument("list_orders", h.ListOrders))
			r.Get("/orders/pending", h.instrument("pending_order", h.PendingOrder))
			r.Get("/orders/{id}", h.instrument("get_order", h.GetOrder))
			r.Put("/orders/{id}/items", h.instrument("replace_items", h.ReplaceItems))
			r.Post("/orders/{id}/create_payment", h.instrument("create_payment", h.CreatePayment))
			r.Post("/orders/{id}/confirm", h.instrument("confirm_order", h.ConfirmOrder))
		})
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/orders/pending
func (h *HTTPHandler) PendingOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	order, err := h.orders.GetOrCreatePendingOrder(r.Context(), userID)
	if err != nil {
		h.internalError(w, "pending_order", err)
		return
	}

	id := order.ID.String()
	writeJSON(w, http.StatusOK, PendingOrderResponse{OrderID: &id})
}

// GET /api/orders
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID, isStaffFromContext(r.Context()))
	if err != nil {
		h.internalError(w, "list_orders", err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		priced, err := h.pricing.PriceOrder(r.Context(), &orders[i])
		if err != nil {
			h.internalError(w, "list_orders", err)
			return
		}
		out = append(out, toOrderResponse(priced))
	}

	writeJSON(w, http.StatusOK, out)
}

// GET /api/orders/{id}
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID, userID, isStaffFromContext(r.Context()))
	if err != nil {
		h.serviceError(w, "get_order", err)
		return
	}

	priced, err := h.pricing.PriceOrder(r.Context(), order)
	if err != nil {
		h.internalError(w, "get_order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(priced))
}

// PUT /api/orders/{id}/items
func (h *HTTPHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req OrderItemsWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	if err := h.orders.ReplaceItems(r.Context(), orderID, userID, items); err != nil {
		h.serviceError(w, "replace_items", err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{Success: true})
}

// POST /api/orders/{id}/create_payment
func (h *HTTPHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req ShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.AddressLine1 == "" || req.City == "" || req.PostalCode == "" || req.Country == "" {
		writeError(w, http.StatusBadRequest, "incomplete shipping details")
		return
	}

	clientSecret, err := h.payments.InitiatePayment(r.Context(), orderID, userID, req.toDomain())
	if err != nil {
		h.serviceError(w, "create_payment", err)
		return
	}

	writeJSON(w, http.StatusOK, CreatePaymentResponse{ClientSecret: clientSecret})
}

// POST /api/orders/{id}/confirm
func (h *HTTPHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "missing user authentication")
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.orders.Confirm(r.Context(), orderID, userID, isStaffFromContext(r.Context())); err != nil {
		h.serviceError(w, "confirm_order", err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{Success: true})
}

// POST /api/webhooks/payment
//
// Signature and parse failures are the only rejections. Every
// authenticated event is acknowledged with 200, whatever the
// reconciliation outcome, so the processor never redelivers recognized
// traffic.
func (h *HTTPHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	result, err := h.payments.HandleNotification(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, port.ErrInvalidSignature):
			writeError(w, http.StatusBadRequest, "invalid signature")
		case errors.Is(err, port.ErrMalformedPayload):
			writeError(w, http.StatusBadRequest, "invalid payload")
		default:
			h.internalError(w, "payment_webhook", err)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.WebhookEvents.WithLabelValues(string(result.Kind), string(result.Outcome)).Inc()
	}
	logging.Log(logging.Fields{
		Component: "webhook",
		OrderID:   result.OrderID,
		Kind:      result.ProviderType,
		Outcome:   string(result.Outcome),
	})

	writeJSON(w, http.StatusOK, WebhookResponse{Status: "success"})
}

// GET /api/products/latest
func (h *HTTPHandler) LatestProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListLatestProducts(r.Context(), 4)
	if err != nil {
		h.internalError(w, "latest_products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// GET /api/products/{category}/{slug}
func (h *HTTPHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductBySlug(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "slug"))
	if err != nil {
		h.internalError(w, "product_detail", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*product))
}

// GET /api/categories/{slug}
func (h *HTTPHandler) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.internalError(w, "category_detail", err)
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	products, err := h.catalog.ListProductsByCategory(r.Context(), category.ID)
	if err != nil {
		h.internalError(w, "category_detail", err)
		return
	}

	writeJSON(w, http.StatusOK, CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		URL:      "/" + category.Slug + "/",
		Products: toProductResponses(products),
	})
}

// POST /api/products/search
func (h *HTTPHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	products, err := h.catalog.SearchProducts(r.Context(), req.Query)
	if err != nil {
		h.internalError(w, "search_products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return orderID, true
}

// serviceError maps the error taxonomy onto HTTP statuses.
func (h *HTTPHandler) serviceError(w http.ResponseWriter, name string, err error) {
	var providerErr *port.ProviderError

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidOrderState):
		writeError(w, http.StatusConflict, "order is not in a valid state for this operation")
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusBadRequest, "unknown product")
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.As(err, &providerErr):
		writeError(w, http.StatusBadGateway, providerErr.Error())
	default:
		h.internalError(w, name, err)
	}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, name string, err error) {
	logging.Log(logging.Fields{
		Component: "http",
		Outcome:   "internal_error",
		Message:   name,
		Error:     err.Error(),
	})
	writeError(w, http.StatusInternalServerError, "internal error")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (h *HTTPHandler) instrument(name string, fn http.HandlerFunc) http.HandlerFunc {
	if h.metrics == nil {
		return fn
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		fn(sw, r)
		h.metrics.Requests.WithLabelValues(name, strconv.Itoa(sw.status)).Inc()
		h.metrics.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
