package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var errMissingBearer = errors.New("missing bearer token")

// authenticate resolves an optional bearer token to the stored user. Requests without
// a token continue anonymously; a token that does not verify is rejected outright.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || a.tokens == nil || a.users == nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := r.Header.Get(authHeader)
		if strings.TrimSpace(raw) == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(raw)
		if err != nil {
			unauthorized(w, r, err.Error())
			return
		}
		claims, err := a.tokens.ParseAndValidate(token)
		if err != nil {
			unauthorized(w, r, "invalid token")
			return
		}
		user, err := a.users.Ensure(r.Context(), claims.Identity())
		if err != nil {
			if errors.Is(err, fund.ErrUnauthenticated) {
				unauthorized(w, r, "invalid token")
				return
			}
			handleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

func (a *API) requireUser(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserFromContext(r.Context()); !ok {
			unauthorized(w, r, errMissingBearer.Error())
			return
		}
		h(w, r)
	})
}

func (a *API) requireAdmin(h http.HandlerFunc) http.Handler {
	return a.requireUser(func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		if !u.IsAdmin {
			w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
			writeError(w, r, http.StatusForbidden, "admin access required")
			return
		}
		h(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="truefund"`)
	writeError(w, r, http.StatusUnauthorized, msg)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", errors.New("authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}
