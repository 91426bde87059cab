package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
)

const headerSessionID = "X-Session-Id"

// AttachRequestContext seeds request data with the client session id so that
// anonymous callers are still correlatable. Auth fills in the user later.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(headerSessionID))
		if len(session) > 255 {
			session = session[:255]
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{SessionID: session})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
