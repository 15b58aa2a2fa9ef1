package controller

import (
	"net/http"

	orderApp "github.com/cassiomorais/gozon/internal/application/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderController struct {
	createOrder *orderApp.CreateOrderUseCase
	getOrder    *orderApp.GetOrderUseCase
	listOrders  *orderApp.ListOrdersUseCase
}

func NewOrderController(create *orderApp.CreateOrderUseCase, get *orderApp.GetOrderUseCase, list *orderApp.ListOrdersUseCase) *OrderController {
	return &OrderController{createOrder: create, getOrder: get, listOrders: list}
}

// Create stores a NEW order; payment happens asynchronously.
func (h *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.createOrder.Execute(r.Context(), orderApp.CreateOrderRequest{UserID: req.UserID, Price: req.Price})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{OrderID: o.ID.String(), Status: o.Status.String()})
}

func (h *OrderController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	orders, err := h.listOrders.Execute(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, FromOrder(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	o, err := h.getOrder.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}
