package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"
)

type contextKey string

const (
	AdminIDKey   contextKey = "adminID"
	FranchiseKey contextKey = "franchise"
)

// AdminMiddleware guards the management API. Two credentials are accepted:
// the static API key in X-API-Key (scripts, curl), or a dashboard JWT in
// the Authorization header.
func AdminMiddleware(apiKey string, authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get("X-API-Key"); key != "" {
				if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
					ctx := context.WithValue(r.Context(), AdminIDKey, "api-key")
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				response.Unauthorized(w, "Invalid API key")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			admin, err := authService.Validate(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, admin.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceMiddleware guards the device API. The bearer token in
// X-Device-Token is resolved to its franchise, which lands in the request
// context.
func DeviceMiddleware(franchiseService *service.FranchiseService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Device-Token")
			if token == "" {
				response.Unauthorized(w, "Missing device token")
				return
			}

			franchise, err := franchiseService.Authenticate(token)
			if err != nil {
				response.Unauthorized(w, "Invalid device token")
				return
			}

			ctx := context.WithValue(r.Context(), FranchiseKey, franchise)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAdminID(r *http.Request) string {
	adminID, ok := r.Context().Value(AdminIDKey).(string)
	if !ok {
		return ""
	}
	return adminID
}

func GetFranchise(r *http.Request) *domain.Franchise {
	franchise, ok := r.Context().Value(FranchiseKey).(*domain.Franchise)
	if !ok {
		return nil
	}
	return franchise
}
