package controllers

import (
	"net/http"

	"github.com/angelmondragon/basket-engine/api/middleware"
	"github.com/angelmondragon/basket-engine/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// SessionPing echoes the authenticated session so clients can probe token validity.
func SessionPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"scope":      "session",
			"status":     "ok",
			"session_id": middleware.SessionIDFromContext(r.Context()),
			"username":   middleware.UsernameFromContext(r.Context()),
		})
	}
}
