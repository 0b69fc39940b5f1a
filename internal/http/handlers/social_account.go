package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type SocialAccountHandler struct {
	log      *logger.Logger
	accounts services.SocialAccountService
}

func NewSocialAccountHandler(log *logger.Logger, accounts services.SocialAccountService) *SocialAccountHandler {
	return &SocialAccountHandler{log: log.With("handler", "SocialAccountHandler"), accounts: accounts}
}

// GET /api/social-accounts
func (h *SocialAccountHandler) List(c *gin.Context) {
	userID, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	items, err := h.accounts.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"accounts": items})
}

// POST /api/social-accounts
func (h *SocialAccountHandler) Create(c *gin.Context) {
	userID, in, ok := h.bind(c)
	if !ok {
		return
	}
	acct, err := h.accounts.Create(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"account": acct})
}

// PUT /api/social-accounts/:id
func (h *SocialAccountHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	userID, in, ok := h.bind(c)
	if !ok {
		return
	}
	acct, err := h.accounts.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"account": acct})
}

// DELETE /api/social-accounts/:id
func (h *SocialAccountHandler) Delete(c *gin.Context) {
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
	if err := h.accounts.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *SocialAccountHandler) bind(c *gin.Context) (userID uuid.UUID, in services.SocialAccountInput, ok bool) {
	uid, err := requestUser(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return userID, in, false
	}
	body, err := readBody(c)
	if err != nil {
		response.RespondError(c, h.log, err)
		return userID, in, false
	}
	if err := services.DecodeAndValidate(body, &in); err != nil {
		response.RespondError(c, h.log, err)
		return userID, in, false
	}
	return uid, in, true
}
