package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/verte-zerg/typist/internal/model"
)

type ctxKey int

const userIDKey ctxKey = iota

const requestIDHeader = "X-Request-ID"

var errForbidden = errors.New("not enough permissions")

// requestID tags the request logger with a caller-supplied or generated id.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// authenticate resolves the bearer token into a user id.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, model.ErrUnauthorized)
			return
		}
		userID, err := s.tokens.Resolve(strings.TrimSpace(token))
		if err == nil {
			_, err = s.accounts.User(r.Context(), userID)
			if errors.Is(err, model.ErrNotFound) {
				err = fmt.Errorf("%w: user not found", model.ErrUnauthorized)
			}
		}
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Int64("user_id", userID)
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
