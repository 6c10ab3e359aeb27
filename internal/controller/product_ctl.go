package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/service"
)

type ProductController struct {
	shopSvc *service.ShopService
}

func NewProductController(shopSvc *service.ShopService) *ProductController {
	return &ProductController{
		shopSvc: shopSvc,
	}
}

// GetProducts 读取店铺商品
// @Summary 商品列表
// @Tags Product (商品)
// @Produce json
// @Param shop query string true "店铺域名"
// @Success 200 {object} map[string]interface{} "{"products", "count", "shop"}"
// @Failure 401 {object} map[string]string "店铺未授权"
// @Router /get-products [get]
func (c *ProductController) GetProducts(ctx *gin.Context) {
	shop := ctx.Query("shop")
	if shop == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Shop parameter is required"})
		return
	}

	products, err := c.shopSvc.GetProducts(ctx.Request.Context(), shop)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", shop),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch products",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"shop":     shop,
	})
}
