package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
)

type createCostModelRequest struct {
	ProjectName string   `json:"projectName" binding:"required,min=1,max=200"`
	ProjectRef  string   `json:"projectRef" binding:"max=50"`
	Client      string   `json:"client" binding:"max=200"`
	GIFA        *float64 `json:"gifa" binding:"omitnil,gt=0"`
	Status      string   `json:"status" binding:"omitempty,oneof=draft approved archived"`
	PreparedBy  string   `json:"preparedBy" binding:"max=100"`
}

func (s *Server) ListCostModels(c *gin.Context) {
	models, err := s.costModelSvc.ListModels(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if models == nil {
		models = []domain.CostModel{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(models),
		"data":    models,
	})
}

func (s *Server) GetCostModel(c *gin.Context) {
	detail, err := s.costModelSvc.GetModel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

func (s *Server) CreateCostModel(c *gin.Context) {
	var req createCostModelRequest
	if err := bindJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.costModelSvc.CreateModel(c.Request.Context(), domain.CreateModelRequest{
		ProjectName: strings.TrimSpace(req.ProjectName),
		ProjectRef:  strings.TrimSpace(req.ProjectRef),
		Client:      strings.TrimSpace(req.Client),
		GIFA:        req.GIFA,
		Status:      domain.Status(strings.TrimSpace(req.Status)),
		PreparedBy:  strings.TrimSpace(req.PreparedBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Cost model created",
		"data":    detail,
	})
}

func (s *Server) CalculateCostModel(c *gin.Context) {
	result, err := s.costModelSvc.CalculateModel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cost model total recalculated",
		"data":    result,
	})
}

func (s *Server) DeleteCostModel(c *gin.Context) {
	if err := s.costModelSvc.DeleteModel(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
