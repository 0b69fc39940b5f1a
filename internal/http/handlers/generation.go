package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type GenerationHandler struct {
	log         *logger.Logger
	generations services.GenerationService
	variations  services.VariationService
}

func NewGenerationHandler(log *logger.Logger, generations services.GenerationService, variations services.VariationService) *GenerationHandler {
	return &GenerationHandler{
		log:         log.With("handler", "GenerationHandler"),
		generations: generations,
		variations:  variations,
	}
}

// POST /api/generate-post
func (h *GenerationHandler) GeneratePost(c *gin.Context) {
	h.generate(c, "")
}

// POST /api/blog-to-sns
func (h *GenerationHandler) BlogToSNS(c *gin.Context) {
	h.generate(c, generation.KindBlog)
}

func (h *GenerationHandler) generate(c *gin.Context, defaultKind generation.RequestKind) {
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
	req, err := services.ParseGenerationRequest(body, defaultKind)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	if defaultKind != "" && req.Kind() != defaultKind {
		response.RespondError(c, h.log, apierr.Validation("Request validation failed", map[string]any{
			"fields": map[string]string{"type": "must be " + string(defaultKind)},
		}))
		return
	}
	res, err := h.generations.Generate(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/generate-variations
func (h *GenerationHandler) GenerateVariations(c *gin.Context) {
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
	var in services.VariationInput
	if err := services.DecodeAndValidate(body, &in); err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	res, err := h.variations.Generate(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}
