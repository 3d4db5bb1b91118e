package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "EventWeights/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PanicHook receives a recovered panic together with its stack.
type PanicHook func(c echo.Context, err error, stack []byte)

// Recover returns recovery middleware.
func Recover(l *applogger.Logger, hook PanicHook) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					stack := debug.Stack()
					l.Error("panic recovered",
						applogger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
						applogger.String("method", c.Request().Method),
						applogger.String("uri", c.Request().RequestURI),
						applogger.String("stack", string(stack)),
						applogger.Error(err),
					)
					if hook != nil {
						hook(c, err, stack)
					}
					_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":  http.StatusInternalServerError,
						"message": "Internal Server Error",
					})
				}
			}()
			return next(c)
		}
	}
}
