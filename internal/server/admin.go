package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetStoreStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.costModelSvc.Stats(c.Request.Context()),
	})
}

func (s *Server) SeedSampleData(c *gin.Context) {
	detail := s.costModelSvc.SeedSample(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Sample data seeded",
		"data":    detail,
	})
}

func (s *Server) ClearData(c *gin.Context) {
	s.costModelSvc.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}
