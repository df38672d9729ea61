package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/samueltrindadern/crmclinica/internal/shared/config"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// DemoClinicID is the tenant used when no authenticated user is present
// (development and limited mode). Deterministic so the seeded demo data
// and unauthenticated requests agree on the same clinic.
var DemoClinicID = types.NewDeterministicID("clinic", "demo")

// User represents the authenticated user from JWT claims.
// Tokens are issued by the hosted auth service; this layer only verifies them.
type User struct {
	ID       types.ID `json:"sub"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     string   `json:"role"` // admin, user
	ClinicID types.ID `json:"clinic_id"`
}

// IsAdmin checks if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// Claims extends JWT claims with clinic-specific data
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ClinicID string `json:"clinic_id"`
}

// Middleware creates JWT authentication middleware
func Middleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})

			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			user := &User{
				ID:       types.ID(claims.Subject),
				Email:    claims.Email,
				Name:     claims.Name,
				Role:     claims.Role,
				ClinicID: types.ID(claims.ClinicID),
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the user from request context
func GetUser(ctx context.Context) *User {
	user, ok := ctx.Value(UserContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}

// ClinicID returns the tenant of the current request, falling back to the
// demo clinic when the request is unauthenticated (development mode).
func ClinicID(ctx context.Context) types.ID {
	if user := GetUser(ctx); user != nil && !user.ClinicID.IsZero() {
		return user.ClinicID
	}
	return DemoClinicID
}

// RequireRole creates middleware that requires a specific role
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if user.Role != role && !user.IsAdmin() {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
