package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type BrandVoiceHandler struct {
	log         *logger.Logger
	brandVoices services.BrandVoiceService
}

func NewBrandVoiceHandler(log *logger.Logger, brandVoices services.BrandVoiceService) *BrandVoiceHandler {
	return &BrandVoiceHandler{log: log.With("handler", "BrandVoiceHandler"), brandVoices: brandVoices}
}

// POST /api/brand-voices/analyze
func (h *BrandVoiceHandler) Analyze(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	body, err := readBody(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	var in services.BrandVoiceInput
	if err := services.DecodeAndValidate(body, &in); err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	bv, err := h.brandVoices.Analyze(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"brand_voice": bv})
}

// GET /api/brand-voices
func (h *BrandVoiceHandler) List(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	items, err := h.brandVoices.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"brand_voices": items})
}

// DELETE /api/brand-voices/:id
func (h *BrandVoiceHandler) Delete(c *gin.Context) {
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
	if err := h.brandVoices.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
