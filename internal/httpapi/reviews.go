package httpapi

import (
	"net/http"
	"strconv"

	"homefoods-be/internal/i18n"
	"homefoods-be/internal/review"
	"homefoods-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

func (h *api) createReview(w http.ResponseWriter, r *http.Request) {
	var in review.CreateInput
	if !decode(w, r, &in) {
		return
	}
	rv, err := h.Reviews.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, rv)
}

func (h *api) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := review.ListFilter{ProductID: q.Get("productId")}
	if v := q.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			transport.WriteError(w, http.StatusBadRequest, i18n.T(i18n.FromCtx(r.Context()), i18n.InvalidRequest),
				map[string]string{"verified": "must be true or false"})
			return
		}
		f.Verified = &verified
	}

	reviews, err := h.Reviews.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, reviews)
}

func (h *api) reviewStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Reviews.Stats(r.Context(), r.URL.Query().Get("productId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *api) adminVerifyReview(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Reviews.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, rv)
}

func (h *api) adminDeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Reviews.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
