package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/service"
)

type AnalyticsController struct {
	analyticsSvc *service.AnalyticsService
}

func NewAnalyticsController(analyticsSvc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsSvc: analyticsSvc,
	}
}

// Analytics 安装量排行
// @Summary 安装量排行
// @Tags Analytics (统计)
// @Produce json
// @Success 200 {array} map[string]interface{} "[{"toolName", "metrics"}] 按安装量倒序"
// @Router /analytics [get]
func (c *AnalyticsController) Analytics(ctx *gin.Context) {
	tools, err := c.analyticsSvc.Leaderboard(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	// 只暴露工具名与计数
	resp := make([]gin.H, 0, len(tools))
	for _, tool := range tools {
		resp = append(resp, gin.H{
			"toolName": tool.ToolName,
			"metrics":  tool.Metrics,
		})
	}
	ctx.JSON(http.StatusOK, resp)
}
