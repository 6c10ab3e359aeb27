package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/middleware"
	"shopify_tools_v1_202608/internal/service"
	"shopify_tools_v1_202608/pkg/shopify"
)

// 同一店铺两次安装之间的冷却时间
const provisionCooldown = 10 * time.Second

type ToolController struct {
	provisionSvc *service.ProvisionService
}

func NewToolController(provisionSvc *service.ProvisionService) *ToolController {
	return &ToolController{
		provisionSvc: provisionSvc,
	}
}

// ==================== 请求体 ====================

type addToolReq struct {
	Name string `json:"name"`
	Shop string `json:"shop"`
}

type removeToolReq struct {
	DeleteScriptID string `json:"deleteScriptId"`
	Shop           string `json:"shop"`
}

// ==================== 安装 ====================

// AddToolScript 为店铺安装 AI 工具
// @Summary 安装工具
// @Description 生成弹窗与工具内容并在店面挂载加载脚本，每店只保留一个工具
// @Tags Tool (工具管理)
// @Accept json
// @Produce json
// @Param request body addToolReq true "工具名与店铺域名"
// @Success 200 {object} map[string]string "{"message", "shopUrl", "shop"}"
// @Failure 400 {object} map[string]string "参数缺失"
// @Failure 401 {object} map[string]string "店铺未授权"
// @Failure 429 {object} map[string]string "冷却中"
// @Router /addToolScript [post]
func (c *ToolController) AddToolScript(ctx *gin.Context) {
	var req addToolReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if req.Shop == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Shop parameter is required",
			"message": "Please provide a valid shop name",
		})
		return
	}

	// 安装冷却：同店并发安装会互删脚本
	check := middleware.GetProvisionLimiter().Check("provision:"+req.Shop, provisionCooldown)
	if !check.Allowed {
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "Provisioning in cooldown",
			"retryAfter": int(check.RetryAfter.Seconds()) + 1,
		})
		return
	}

	result, err := c.provisionSvc.InstallTool(ctx.Request.Context(), req.Shop, req.Name)
	if err != nil {
		respondProvisionError(ctx, req.Shop, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Script tag added successfully",
		"shopUrl": result.ShopURL,
		"shop":    result.Shop,
	})
}

// respondProvisionError 安装失败的统一响应
// 未授权 -> 401 带重新授权入口；平台错误 -> 状态码与响应体透传；其余 -> 500
func respondProvisionError(ctx *gin.Context, shop string, err error) {
	if errors.Is(err, service.ErrNotAuthenticated) {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error":          "Shop not authenticated",
			"redirectToAuth": fmt.Sprintf("/auth?shop=%s", shop),
			"message":        "Please authenticate your store first",
		})
		return
	}

	var apiErr *shopify.APIError
	if errors.As(err, &apiErr) {
		ctx.JSON(apiErr.StatusCode, gin.H{
			"error":   "Failed to add script tag",
			"details": apiErr.Body,
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}

// ==================== 卸载 ====================

// RemoveToolScript 按脚本标签 id 卸载工具
// @Summary 卸载工具
// @Tags Tool (工具管理)
// @Accept json
// @Produce json
// @Param request body removeToolReq true "脚本标签 id 与店铺域名"
// @Success 200 {object} map[string]bool "{"success": true}"
// @Failure 401 {object} map[string]string "店铺未授权"
// @Router /removeToolScript [post]
func (c *ToolController) RemoveToolScript(ctx *gin.Context) {
	var req removeToolReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}

	err := c.provisionSvc.RemoveTool(ctx.Request.Context(), req.Shop, req.DeleteScriptID)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", req.Shop),
			})
			return
		}
		var apiErr *shopify.APIError
		if errors.As(err, &apiErr) {
			ctx.JSON(apiErr.StatusCode, gin.H{"success": false, "error": apiErr.Body})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ==================== 脚本列表 ====================

// GetScripts 查询店铺当前挂载的脚本标签
// @Summary 脚本列表
// @Tags Tool (工具管理)
// @Produce json
// @Param shop query string true "店铺域名"
// @Success 200 {array} shopify.ScriptTag
// @Failure 401 {object} map[string]string "店铺未授权"
// @Router /get-scripts [get]
func (c *ToolController) GetScripts(ctx *gin.Context) {
	shop := ctx.Query("shop")

	tags, err := c.provisionSvc.ListScripts(ctx.Request.Context(), shop)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", shop),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch scripts",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, tags)
}

// ==================== 内容读取 ====================

// LLMResponse 店面加载脚本按 id 读取生成内容
// LandingPage=true 时计一次安装量
// @Summary 生成内容读取
// @Tags Tool (工具管理)
// @Produce json
// @Param id query string true "内容标识"
// @Param name query string false "工具名"
// @Param LandingPage query string false "是否落地页加载"
// @Success 200 {object} model.LLMResponse
// @Failure 404 {object} map[string]string "内容不存在"
// @Router /llmResponse [get]
func (c *ToolController) LLMResponse(ctx *gin.Context) {
	id := ctx.Query("id")
	name := ctx.Query("name")
	landingPage := ctx.Query("LandingPage") == "true"

	resp, err := c.provisionSvc.FetchContent(ctx.Request.Context(), id, name, landingPage)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if resp == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Response not found"})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
