package middleware

import (
	"fmt"
	"net/http"

	"github.com/schoolbridge/schoolbridge-backend/api/responses"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
)

// RequireRole rejects requests whose authenticated role does not match.
// It runs after Auth, which seeds the role into the context.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	message := fmt.Sprintf("%s role required", role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
