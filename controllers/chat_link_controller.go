package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haidershah700/china-pakistan-connect/services"
	"github.com/haidershah700/china-pakistan-connect/utils"
)

// GET /api/chat-links
func GetChatLinks(links *services.ChatLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": links.All()})
	}
}

// GET /api/chat-links/:section?redirect=1
func GetChatLink(links *services.ChatLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, ok := links.Get(c.Param("section"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown section"})
			return
		}
		if utils.IsTruthy(c.Query("redirect")) {
			c.Redirect(http.StatusFound, link.URL)
			return
		}
		c.JSON(http.StatusOK, link)
	}
}
