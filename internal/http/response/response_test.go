package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
)

func TestRespondFromStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("%w: tag not found", apierr.ErrNotFound), http.StatusNotFound, "not found: tag not found"},
		{fmt.Errorf("%w: bad limit", apierr.ErrInvalidArgument), http.StatusBadRequest, "invalid argument: bad limit"},
		{fmt.Errorf("%w: raced", apierr.ErrConflict), http.StatusConflict, "conflict: raced"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondFrom(c, tc.err, "request_failed")

		if rec.Code != tc.status {
			t.Fatalf("status: got=%d want=%d", rec.Code, tc.status)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Message != tc.message {
			t.Fatalf("message: got=%q want=%q", env.Error.Message, tc.message)
		}
	}
}
