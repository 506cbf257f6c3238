package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListNRM2Elements(c *gin.Context) {
	elements, err := s.costModelSvc.Templates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(elements),
		"data":    elements,
	})
}
