package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/jwt"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if !IsManager(identity) {
			response.Forbidden(w, "Manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireEmployee requires the token to be bound to an employee record
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if identity.EmployeeID == "" {
			response.Forbidden(w, "Employee access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func IsManager(identity jwt.Identity) bool {
	return identity.Role == jwt.RoleManager || identity.Role == jwt.RoleAdmin
}
