package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ashkam58/pythongrade3/internal/progress"
)

const (
	authCookieName = "funfair_token"
	anonCookieName = "funfair_anon"
)

// authUser is placed into request context by the auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

func userFrom(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers signup/login/logout and the gated /auth/me.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)
	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFrom(r))
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignup creates a learner, signs a JWT, sets the cookie and claims
// anonymous progress.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	l, err := s.learners.CreateLearner(r.Context(), body.Username, body.Password, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.signIn(w, r, l) {
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	l, err := s.learners.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.signIn(w, r, l) {
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, authCookieName, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// signIn issues the auth cookie and moves any guest progress to l.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, l *progress.Learner) bool {
	tok, exp, err := s.signJWT(l.ID, l.Username)
	if err != nil {
		writeError(w, err)
		return false
	}
	s.setCookie(w, authCookieName, tok, exp, 0)
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if n, err := s.learners.Claim(r.Context(), c.Value, l.ID); err != nil {
			log.Warn().Err(err).Msg("claim anon progress")
		} else if n > 0 {
			log.Info().Int64("events", n).Str("learner", l.ID).Msg("claimed guest progress")
		}
	}
	return true
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

var errInvalidToken = errors.New("invalid token")

// parseJWT validates a token and returns the learner it names, which must
// still exist.
func (s *Server) parseJWT(ctx context.Context, tok string) (*authUser, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, errInvalidToken
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, errInvalidToken
	}
	l, err := s.learners.FindByID(ctx, id)
	if err != nil {
		return nil, errInvalidToken
	}
	return &authUser{ID: l.ID, Username: l.Username}, nil
}

// setCookie writes an HttpOnly cookie; maxAge < 0 deletes it.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, maxAge int) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or the auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(authCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

// withOptionalAuth decorates requests with the learner when a valid JWT is
// present. It never rejects.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrCookie(r); tok != "" {
				if u, err := s.parseJWT(r.Context(), tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r)
			if tok == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}
			u, err := s.parseJWT(r.Context(), tok)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// ensureAnonID returns the anon cookie, setting a new one when missing.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	s.setCookie(w, anonCookieName, id, s.now().Add(180*24*time.Hour), 0)
	return id
}

// owner identifies who progress belongs to for this request.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) progress.Owner {
	if u := userFrom(r); u != nil {
		return progress.Owner{LearnerID: u.ID}
	}
	return progress.Owner{AnonID: s.ensureAnonID(w, r)}
}

// handleProgress returns per-mode success counts and recent events.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	o := s.owner(w, r)
	sum, err := s.learners.Summary(r.Context(), o)
	if err != nil {
		writeError(w, err)
		return
	}
	recent, err := s.learners.Recent(r.Context(), o, 20)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": sum, "recent": recent})
}
