package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/ctxutil"
)

func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, apierr.Validation("Malformed JSON body", nil)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apierr.Validation("Request body too large or unreadable", nil)
	}
	return body, nil
}

// requestUser is the caller attached by RequireAuth.
func requestUser(c *gin.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(c.Request.Context())
	if id == uuid.Nil {
		return uuid.Nil, apierr.AuthRequired("")
	}
	return id, nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.Validation("Invalid id", map[string]any{"fields": map[string]string{name: "must be a UUID"}})
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.Validation("Invalid query parameter", map[string]any{"fields": map[string]string{name: "must be a non-negative integer"}})
	}
	return n, nil
}
