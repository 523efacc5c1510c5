package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/rookeryhq/rookery/internal/server"
)

const sessionCookieName = "rookery_admin"

// Describes the admin sessionState that's persisted to the cookie.
type sessionState struct {
	Admin bool
}

// Fetches the current session tied to the request.
func session(r *http.Request, secureCookie *securecookie.SecureCookie) sessionState {
	cookie, err := r.Cookie(sessionCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return sessionState{}
	}
	if err != nil {
		slog.Error("error fetching cookie", "err", err)
		return sessionState{}
	}

	value := sessionState{}
	if err := secureCookie.Decode(sessionCookieName, cookie.Value, &value); err != nil {
		slog.Error("error decoding cookie", "err", err)
		return sessionState{}
	}

	return value
}

// Sets the session on the response.
func setSession(w http.ResponseWriter, secureCookie *securecookie.SecureCookie, https bool, sess sessionState) {
	encoded, err := secureCookie.Encode(sessionCookieName, sess)
	if err != nil {
		slog.Error("error encoding cookie", "err", err)
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   https,
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)
}

func requireAdminMiddleware(sc *securecookie.SecureCookie) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session(r, sc)
			if !state.Admin {
				http.Error(w, "Unauthenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type AdminLoginReq struct {
	Secret string `json:"secret"`
}

func (s *Server) postAdminLogin(w http.ResponseWriter, r *http.Request) error {
	var body AdminLoginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return rooerrs.E(err, http.StatusBadRequest)
	}

	if s.adminSecret == "" {
		return rooerrs.E("admin access is not configured", http.StatusServiceUnavailable)
	}
	if subtle.ConstantTimeCompare([]byte(body.Secret), []byte(s.adminSecret)) != 1 {
		return rooerrs.E("invalid secret", http.StatusUnauthorized)
	}

	setSession(w, s.secureCookie, s.httpsCookies, sessionState{Admin: true})

	return server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) getAdminLogout(w http.ResponseWriter, r *http.Request) error {
	setSession(w, s.secureCookie, s.httpsCookies, sessionState{})

	return server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
