package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
)

type updateMeasuredWorkRequest struct {
	ElementCode *string  `json:"elementCode" binding:"omitnil,min=1"`
	ElementName *string  `json:"elementName" binding:"omitnil,min=1,max=200"`
	Description *string  `json:"description" binding:"omitnil,min=1,max=500"`
	Quantity    *float64 `json:"quantity" binding:"omitnil,gte=0"`
	Unit        *string  `json:"unit" binding:"omitnil,oneof=m2 m3 m nr t ls"`
	UnitRate    *float64 `json:"unitRate" binding:"omitnil,gte=0"`
	Notes       *string  `json:"notes" binding:"omitnil,max=500"`
}

func (r updateMeasuredWorkRequest) toPatch() domain.WorkPatch {
	patch := domain.WorkPatch{
		ElementCode: r.ElementCode,
		ElementName: r.ElementName,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitRate:    r.UnitRate,
		Notes:       r.Notes,
	}
	if r.Unit != nil {
		unit := domain.Unit(*r.Unit)
		patch.Unit = &unit
	}
	return patch
}

func (s *Server) ListMeasuredWorks(c *gin.Context) {
	var query struct {
		CostModelID string `form:"costModelId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	works, err := s.costModelSvc.ListWorks(c.Request.Context(), domain.ListWorksRequest{
		CostModelID: strings.TrimSpace(query.CostModelID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if works == nil {
		works = []domain.MeasuredWork{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(works),
		"data":    works,
	})
}

func (s *Server) GetMeasuredWork(c *gin.Context) {
	work, err := s.costModelSvc.GetWork(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": work})
}

func (s *Server) UpdateMeasuredWork(c *gin.Context) {
	var req updateMeasuredWorkRequest
	if err := bindStrictJSON(c, &req); err != nil {
		AbortWithError(c, err)
		return
	}
	patch := req.toPatch()
	if patch.IsEmpty() {
		AbortWithError(c, domain.ErrEmptyUpdate)
		return
	}

	work, err := s.costModelSvc.UpdateWork(c.Request.Context(), strings.TrimSpace(c.Param("id")), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Measured work updated",
		"data":    work,
	})
}

func (s *Server) DeleteMeasuredWork(c *gin.Context) {
	if err := s.costModelSvc.DeleteWork(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
