// Package httpapi exposes the session and relation services over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vidora/vidora/internal/service"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Server wires services into HTTP handlers.
type Server struct {
	sessions      service.SessionService
	relations     service.RelationService
	log           *zap.Logger
	secureCookies bool
	refreshTTL    time.Duration
}

// New constructs a Server. secureCookies should be true everywhere except
// local development over plain HTTP.
func New(sessions service.SessionService, relations service.RelationService, log *zap.Logger, secureCookies bool, refreshTTL time.Duration) *Server {
	return &Server{
		sessions:      sessions,
		relations:     relations,
		log:           log,
		secureCookies: secureCookies,
		refreshTTL:    refreshTTL,
	}
}

// Router builds the route table. Refresh and the unauthenticated auth
// endpoints sit outside the gate; everything else goes through it.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	gated := api.NewRoute().Subrouter()
	gated.Use(s.Auth)
	gated.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	gated.HandleFunc("/auth/change-password", s.handleChangePassword).Methods(http.MethodPost)
	gated.HandleFunc("/users/me", s.handleCurrentUser).Methods(http.MethodGet)
	gated.HandleFunc("/users/{username}/channel", s.handleChannelProfile).Methods(http.MethodGet)
	gated.HandleFunc("/relations/toggle", s.handleToggle).Methods(http.MethodPost)
	gated.HandleFunc("/likes/{kind}", s.handleListLikes).Methods(http.MethodGet)

	return r
}

// setAuthCookies mirrors the tokens into httpOnly cookies for browser
// clients; API clients read them from the JSON body instead.
func (s *Server) setAuthCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.refreshTTL / time.Second),
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
