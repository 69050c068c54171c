package httpapi

import (
	"net/http"
	"strings"

	"homefoods-be/internal/product"
	"homefoods-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

func (h *api) listProducts(w http.ResponseWriter, r *http.Request) {
	h.products(w, r, false)
}

func (h *api) adminListProducts(w http.ResponseWriter, r *http.Request) {
	h.products(w, r, true)
}

func (h *api) products(w http.ResponseWriter, r *http.Request, includeUnavailable bool) {
	category := product.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	products, err := h.Products.List(r.Context(), product.ListFilter{
		Category:           category,
		IncludeUnavailable: includeUnavailable,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, products)
}

func (h *api) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !p.Available {
		writeError(w, r, product.ErrProductNotFound)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *api) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Products.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, cats)
}

func (h *api) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if !decode(w, r, &p) {
		return
	}
	created, err := h.Products.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, created)
}

func (h *api) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if !decode(w, r, &p) {
		return
	}
	updated, err := h.Products.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, updated)
}

func (h *api) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
