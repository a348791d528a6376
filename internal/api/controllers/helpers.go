package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"herotime/pkg/middleware"
	"herotime/pkg/utils"
)

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		utils.HandleServiceError(c, utils.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func requestOrigin(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Origin"))
}
