package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type HistoryHandler struct {
	log     *logger.Logger
	history services.HistoryService
}

func NewHistoryHandler(log *logger.Logger, history services.HistoryService) *HistoryHandler {
	return &HistoryHandler{log: log.With("handler", "HistoryHandler"), history: history}
}

// GET /api/generations?limit&offset&source&variant_type
func (h *HistoryHandler) List(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	page, err := h.history.List(c.Request.Context(), userID, services.HistoryQuery{
		Source:      c.Query("source"),
		VariantType: c.Query("variant_type"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/generations/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	rec, err := h.history.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"generation": rec})
}

// DELETE /api/generations/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	if err := h.history.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
