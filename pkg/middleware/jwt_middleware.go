package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"herotime/pkg/utils"
)

const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyRole      = "Role"
)

// JWTAuthMiddleware accepts a Supabase access token from the Authorization header and
// exposes its subject and email to the handlers.
func JWTAuthMiddleware(verifier utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			log.WithField("path", c.Request.URL.Path).Error("auth verifier not configured")
			utils.AbortWithError(c, http.StatusInternalServerError, "Server configuration error")
			return
		}

		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"path":     c.Request.URL.Path,
				"trace_id": c.GetString("trace_id"),
			}).Debug("token rejected")
			utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyUserEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
