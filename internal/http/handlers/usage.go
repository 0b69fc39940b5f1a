package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type UsageHandler struct {
	log   *logger.Logger
	usage services.UsageService
}

func NewUsageHandler(log *logger.Logger, usage services.UsageService) *UsageHandler {
	return &UsageHandler{log: log.With("handler", "UsageHandler"), usage: usage}
}

// GET /api/me/usage
func (h *UsageHandler) GetUsage(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	sum, err := h.usage.Summary(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, sum)
}
