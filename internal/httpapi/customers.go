package httpapi

import (
	"net/http"
	"time"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/cart"
	"homefoods-be/internal/customer"
	"homefoods-be/internal/transport"
)

type loginRequest struct {
	Phone string `json:"phone"`
}

func (h *api) signup(w http.ResponseWriter, r *http.Request) {
	var in customer.SignupInput
	if !decode(w, r, &in) {
		return
	}
	sess, err := h.Customers.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	transport.WriteJSON(w, http.StatusCreated, sess)
}

func (h *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.Customers.Login(r.Context(), req.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	transport.WriteJSON(w, http.StatusOK, sess)
}

func (h *api) logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", time.Unix(0, 0))
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

func (h *api) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *api) profile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.SessionFrom(r.Context())
	c, err := h.Customers.Profile(r.Context(), claims.CustomerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *api) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in customer.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	claims, _ := auth.SessionFrom(r.Context())
	c, err := h.Customers.UpdateProfile(r.Context(), claims.CustomerID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *api) getCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.SessionFrom(r.Context())
	snap, err := h.Carts.Get(r.Context(), claims.CustomerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, snap)
}

func (h *api) syncCart(w http.ResponseWriter, r *http.Request) {
	var in cart.SyncInput
	if !decode(w, r, &in) {
		return
	}
	claims, _ := auth.SessionFrom(r.Context())
	res, err := h.Carts.Sync(r.Context(), claims.CustomerID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}
