package httpapi

import (
	"net"
	"net/http"
	"time"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/validate"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := s.decode(r, validate.Register, &in); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	sess, err := s.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := s.decode(r, validate.Login, &in); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), in, clientIP(r))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if s.opts.CookieAuth {
		http.SetCookie(w, &http.Cookie{
			Name:     TokenCookie,
			Value:    sess.AccessToken,
			Path:     "/",
			MaxAge:   int(s.auth.TokenTTL() / time.Second),
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	writeJSON(w, http.StatusOK, sess)
}

// logout only drops the cookie; issued tokens stay valid until they expire.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromCtx(r.Context())
	if !ok {
		writeError(w, r, s.log, errs.ErrUnauthorized)
		return
	}
	u, err := s.auth.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
