package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var DefaultAllowedOrigins = []string{
	"https://idea2sns.space",
	"http://localhost:8080",
	"http://localhost:5173",
}

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}
)

// CORS grants exact-match origins from the allow-list. Any other origin is answered
// with the first configured origin, which browsers will refuse to match.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && o != "*" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedOrigins
	}
	known := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		known[o] = true
	}
	fallback := allowed[0]

	grant := cors.New(cors.Config{
		AllowOrigins:              allowed,
		AllowMethods:              corsMethods,
		AllowHeaders:              corsHeaders,
		ExposeHeaders:             []string{headerTraceID, headerRequestID},
		AllowCredentials:          true,
		OptionsResponseStatusCode: http.StatusOK,
		MaxAge:                    12 * time.Hour,
	})

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || known[origin] {
			grant(c)
			return
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", fallback)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
			h.Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
			c.AbortWithStatus(http.StatusOK)
		}
	}
}
