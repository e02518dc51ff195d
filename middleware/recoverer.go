package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/response"
)

// Recoverer turns a panicking handler into a 500 with the standard error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logger.FromContext(r.Context()).Error("panic recovered",
				zap.Any("panic", rvr),
				zap.ByteString("stack", debug.Stack()),
			)
			response.JSON(w, http.StatusInternalServerError,
				apperror.NewInternalError("internal server error", nil).ToResponse())
		}()
		next.ServeHTTP(w, r)
	})
}
