package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one, echoes it in the
// response and puts it in the log context.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := wrap.WithRequestID(r.Context(), id)
		ctx = types.WithRequestIDContext(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
