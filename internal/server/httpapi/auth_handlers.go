package httpapi

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID string `json:"userId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Fullname == "" || req.Password == "" {
		s.writeError(w, r, http.StatusBadRequest, "all fields are required")
		return
	}
	id, err := s.sessions.Register(r.Context(), req.Username, req.Email, req.Fullname, req.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registerResponse{UserID: id})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// identifierOf accepts the explicit identifier field or the older
// email/username pair, whichever the client sends.
func (req *loginRequest) identifierOf() string {
	switch {
	case req.Identifier != "":
		return req.Identifier
	case req.Email != "":
		return req.Email
	default:
		return req.Username
	}
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId,omitempty"`
	Username     string `json:"username,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	identifier := req.identifierOf()
	if identifier == "" || req.Password == "" {
		s.writeError(w, r, http.StatusBadRequest, "identifier and password are required")
		return
	}
	pair, u, err := s.sessions.LoginWithIP(r.Context(), identifier, req.Password, remoteIP(r))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	s.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       u.ID.String(),
		Username:     u.Username,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// Cookie takes precedence over the body field.
	presented := ""
	if c, err := r.Cookie(refreshCookie); err == nil {
		presented = c.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		s.writeError(w, r, http.StatusUnauthorized, "refresh token is required")
		return
	}
	pair, err := s.sessions.Refresh(r.Context(), presented)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	s.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "missing identity")
		return
	}
	if err := s.sessions.Logout(r.Context(), userID); err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.clearAuthCookies(w)
	s.writeJSON(w, http.StatusOK, struct{}{})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "missing identity")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		s.writeError(w, r, http.StatusBadRequest, "old and new passwords are required")
		return
	}
	if err := s.sessions.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		s.writeErr(w, r, err)
		return
	}
	// The refresh session is revoked as part of the change.
	s.clearAuthCookies(w)
	s.writeJSON(w, http.StatusOK, struct{}{})
}

type userResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromCtx(r.Context())
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "missing identity")
		return
	}
	u, err := s.sessions.GetUser(r.Context(), userID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userResponse{
		UserID:   u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Fullname: u.Fullname,
	})
}

type channelResponse struct {
	Username          string `json:"username"`
	Fullname          string `json:"fullname"`
	SubscriberCount   int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

func (s *Server) handleChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := UserIDFromCtx(r.Context())
	username := mux.Vars(r)["username"]
	profile, err := s.relations.ChannelProfile(r.Context(), viewerID, username)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, channelResponse{
		Username:          profile.User.Username,
		Fullname:          profile.User.Fullname,
		SubscriberCount:   profile.SubscriberCount,
		SubscribedToCount: profile.SubscribedToCount,
		IsSubscribed:      profile.IsSubscribed,
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
