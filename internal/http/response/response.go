package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status string   `json:"status"`
	Error  APIError `json:"error"`
}

type OKEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// RespondError writes the error envelope. Non-apierr errors become INTERNAL_ERROR and
// their cause is only logged.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.Internal("", nil)
	}
	status := ae.Status
	if status == 0 {
		status = apierr.StatusFor(ae.Code)
	}
	if log != nil && status >= http.StatusInternalServerError && ae.Err != nil {
		log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", ae.Code,
			"error", ae.Err,
		)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Status: "error",
		Error: APIError{
			Code:    ae.Code,
			Message: ae.PublicMessage(),
			Details: ae.Details,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, OKEnvelope{Status: "ok", Data: payload})
}
