package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/service"
)

type PageController struct {
	shopSvc *service.ShopService
}

func NewPageController(shopSvc *service.ShopService) *PageController {
	return &PageController{
		shopSvc: shopSvc,
	}
}

// ==================== 请求体 ====================

type savePagePathReq struct {
	Path     string `json:"path"`
	ShopName string `json:"shopName"`
}

// ==================== 落地路径 ====================

// GetPagePath 查询店铺落地路径
// @Summary 查询落地路径
// @Tags Page (落地页)
// @Produce json
// @Param shop query string true "店铺域名"
// @Success 200 {object} map[string]string "{"path", "shopName"}，未配置时 path 为 null"
// @Router /get-page-path [get]
func (c *PageController) GetPagePath(ctx *gin.Context) {
	shop := ctx.Query("shop")

	record, err := c.shopSvc.GetPagePath(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if record == nil {
		ctx.JSON(http.StatusOK, gin.H{"path": nil, "shopName": shop})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"path": record.Path, "shopName": record.ShopName})
}

// SavePagePath 保存落地路径并创建店面页面
// @Summary 保存落地路径
// @Description 路径每店只能配置一次，同时在店面创建 /pages/{path} 页面
// @Tags Page (落地页)
// @Accept json
// @Produce json
// @Param request body savePagePathReq true "路径与店铺域名"
// @Success 200 {object} map[string]interface{} "{"success", "data", "message"}"
// @Failure 400 {object} map[string]interface{} "参数缺失或页面创建被平台拒绝"
// @Failure 401 {object} map[string]interface{} "店铺未授权"
// @Router /save-page-path [post]
func (c *PageController) SavePagePath(ctx *gin.Context) {
	var req savePagePathReq
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Path == "" || req.ShopName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Path and shop name are required",
		})
		return
	}

	page, userErrs, err := c.shopSvc.SavePagePath(ctx.Request.Context(), req.ShopName, req.Path)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":        false,
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", req.ShopName),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to save page path",
		})
		return
	}

	// 平台侧业务校验失败（如 handle 冲突），按业务失败返回
	if len(userErrs) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   userErrs[0].Message,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
		"message": "Page path saved successfully",
	})
}

// ==================== 店面地址 ====================

// GetStoreURL 组合店面访问地址
// @Summary 店面地址
// @Tags Page (落地页)
// @Produce json
// @Param shop query string true "店铺域名"
// @Success 200 {object} map[string]interface{} "{"storeUrl", "shop", "hasPath", "authenticated"}"
// @Failure 401 {object} map[string]string "店铺未授权"
// @Router /get-store-url [get]
func (c *PageController) GetStoreURL(ctx *gin.Context) {
	shop := ctx.Query("shop")

	storeURL, hasPath, err := c.shopSvc.StoreURL(ctx.Request.Context(), shop)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", shop),
				"message":        "Please authenticate your store first",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"storeUrl":      storeURL,
		"shop":          shop,
		"hasPath":       hasPath,
		"authenticated": true,
	})
}
