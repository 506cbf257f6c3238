package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/wajidashraf/CostModelAppTraining/internal/providers/pdf"
)

func (s *Server) DownloadCostReport(c *gin.Context) {
	ctx := c.Request.Context()
	detail, err := s.costModelSvc.GetModel(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdf.GenerateCostReport(ctx, pdf.CostReportData{
		Model:       detail.Model,
		Works:       detail.Works,
		GeneratedAt: s.clock.Now(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(detail.Model.ProjectName)))
	c.Data(http.StatusOK, "application/pdf", body)
}

func reportFilename(projectName string) string {
	name := slug.Make(projectName)
	if name == "" {
		name = "cost-model"
	}
	return name + "-cost-report.pdf"
}
