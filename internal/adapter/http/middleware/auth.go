package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/auth"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

// Auth validates the bearer token and stores the caller in the context.
// Requests without an Authorization header continue as anonymous; a bad token is a 401.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		header := r.Header.Get("Authorization")

		if header == "" || h.auth == nil {
			next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, models.Anonymous())))
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		principal, err := h.auth.Validate(ctx, token)
		if err != nil || principal == nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate request", "error", fmt.Sprint(err))
			msg := "invalid credentials"
			if errors.Is(err, auth.ErrExpToken) {
				msg = auth.ErrExpToken.Error()
			}
			errorResponse(w, http.StatusUnauthorized, msg)
			return
		}

		ctx = wrap.WithUserID(ctx, principal.Subject)
		next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, principal)))
	})
}

// RequireRoles lets through authenticated callers holding one of allowedRoles.
// With no roles any authenticated caller passes.
func (h *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.UserRole) http.Handler {
	allowed := make(map[types.UserRole]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := models.PrincipalFromContext(r.Context())
		if principal.IsAnonymous() {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}

		if len(allowed) > 0 {
			if _, ok := allowed[principal.Role]; !ok {
				errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
