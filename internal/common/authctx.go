package common

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const bearerKey ctxKey = "auth/bearer"

// WithBearer stores the inbound bearer token on the context.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey, token)
}

// Bearer extracts the inbound bearer token from the context if present.
func Bearer(ctx context.Context) (string, bool) {
	v := ctx.Value(bearerKey)
	if v == nil {
		return "", false
	}
	token, ok := v.(string)
	return token, ok && token != ""
}

// BearerToken extracts the bearer token from the Authorization header,
// returning the empty string when the request carries none.
func BearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// BearerMiddleware copies the request's bearer token onto the context so
// downstream services can reuse it without re-parsing headers.
func BearerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			r = r.WithContext(WithBearer(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
