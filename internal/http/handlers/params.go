package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/http/response"
	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
	"github.com/yungbote/paperrec-backend/internal/platform/ctxutil"
)

func requireUser(c *gin.Context) (uint, bool) {
	uid := ctxutil.UserID(c.Request.Context())
	if uid == 0 {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return 0, false
	}
	return uid, true
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", apierr.ErrInvalidArgument, name)
	}
	return n, nil
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a positive integer", apierr.ErrInvalidArgument, name)
	}
	v := uint(n)
	return &v, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", apierr.ErrInvalidArgument, name)
}

func pathUint(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid %s", apierr.ErrInvalidArgument, name)
	}
	return uint(n), nil
}

func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrInvalidArgument, err)
	}
	return nil
}
