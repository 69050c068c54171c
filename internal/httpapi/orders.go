package httpapi

import (
	"net/http"
	"strconv"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/order"
	"homefoods-be/internal/payment"
	"homefoods-be/internal/transport"
	"homefoods-be/internal/validation"

	"github.com/go-chi/chi/v5"
)

type placeOrderResponse struct {
	OrderID        string       `json:"orderId"`
	Subtotal       float64      `json:"subtotal"`
	DeliveryCharge float64      `json:"deliveryCharge"`
	GrandTotal     float64      `json:"grandTotal"`
	TotalWeightKg  float64      `json:"totalWeightKg"`
	Status         order.Status `json:"status"`
}

type paymentFailureRequest struct {
	ErrorMessage string `json:"errorMessage"`
}

type statusRequest struct {
	Status order.Status `json:"status"`
}

func (h *api) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if !decode(w, r, &in) {
		return
	}
	if claims, ok := auth.SessionFrom(r.Context()); ok {
		in.CustomerID = claims.CustomerID
	}

	o, err := h.Orders.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:        o.ID,
		Subtotal:       o.Subtotal,
		DeliveryCharge: o.DeliveryCharge,
		GrandTotal:     o.GrandTotal,
		TotalWeightKg:  o.TotalWeightKg,
		Status:         o.Status,
	})
}

func (h *api) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

func (h *api) startPayment(w http.ResponseWriter, r *http.Request) {
	intent, err := h.Orders.StartPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, intent)
}

func (h *api) paymentSuccess(w http.ResponseWriter, r *http.Request) {
	var s payment.Success
	if !decode(w, r, &s) {
		return
	}
	h.confirm(w, r, payment.Succeeded(s))
}

func (h *api) paymentFailure(w http.ResponseWriter, r *http.Request) {
	var req paymentFailureRequest
	if !decode(w, r, &req) {
		return
	}
	h.confirm(w, r, payment.Failed(req.ErrorMessage))
}

func (h *api) confirm(w http.ResponseWriter, r *http.Request, res payment.Result) {
	c, err := h.Orders.ConfirmPayment(r.Context(), chi.URLParam(r, "id"), res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *api) simulatePayment(w http.ResponseWriter, r *http.Request) {
	res, err := h.Orders.SimulatePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, _ := res.Success()
	transport.WriteJSON(w, http.StatusOK, s)
}

func (h *api) myOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.SessionFrom(r.Context())
	h.listOrders(w, r, order.ListFilter{CustomerID: claims.CustomerID})
}

func (h *api) adminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.ListFilter{Status: order.Status(q.Get("status"))}
	if phone := q.Get("phone"); phone != "" {
		f.Phone = validation.NormalizePhone(phone)
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Skip, _ = strconv.Atoi(q.Get("skip"))
	h.listOrders(w, r, f)
}

func (h *api) listOrders(w http.ResponseWriter, r *http.Request, f order.ListFilter) {
	orders, err := h.Orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, orders)
}

func (h *api) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}
