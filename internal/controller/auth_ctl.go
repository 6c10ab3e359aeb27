package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/service"
)

type AuthController struct {
	authSvc *service.AuthService
}

func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{
		authSvc: authSvc,
	}
}

// Login OAuth 第一步：跳转平台授权页
// @Summary 发起授权
// @Tags Auth (授权)
// @Param shop query string true "店铺域名 xxx.myshopify.com"
// @Success 302 "跳转到平台授权页"
// @Failure 400 {string} string "shop 参数缺失或非法"
// @Router /auth [get]
func (c *AuthController) Login(ctx *gin.Context) {
	shop := ctx.Query("shop")
	if shop == "" {
		ctx.String(http.StatusBadRequest, "Missing shop parameter! Usage: /auth?shop=your-shop.myshopify.com")
		return
	}

	authURL, err := c.authSvc.BuildAuthURL(shop)
	if err != nil {
		if errors.Is(err, service.ErrInvalidShopDomain) {
			ctx.String(http.StatusBadRequest, "Invalid shop domain. Must be a .myshopify.com domain")
			return
		}
		ctx.String(http.StatusInternalServerError, "Failed to build auth url: %v", err)
		return
	}

	ctx.Redirect(http.StatusFound, authURL)
}

// Callback OAuth 第二步：code 换 token 并保存会话
// @Summary 授权回调
// @Tags Auth (授权)
// @Param shop query string true "店铺域名"
// @Param code query string true "授权码"
// @Param state query string true "防伪 state"
// @Success 302 "跳回应用首页"
// @Failure 400 {string} string "参数缺失或 state 校验失败"
// @Router /auth/callback [get]
func (c *AuthController) Callback(ctx *gin.Context) {
	if errMsg := ctx.Query("error"); errMsg != "" {
		ctx.String(http.StatusBadRequest, "OAuth error: %s", errMsg)
		return
	}

	shop := ctx.Query("shop")
	code := ctx.Query("code")
	state := ctx.Query("state")
	if shop == "" || code == "" {
		ctx.String(http.StatusBadRequest, "Missing required parameters (shop or code)")
		return
	}

	redirect, err := c.authSvc.HandleCallback(ctx.Request.Context(), shop, code, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidShopDomain):
			ctx.String(http.StatusBadRequest, "Invalid shop domain")
		case errors.Is(err, service.ErrInvalidState):
			ctx.String(http.StatusBadRequest, "Invalid or expired state, please restart authorization")
		default:
			ctx.String(http.StatusInternalServerError, "Authentication failed: %v", err)
		}
		return
	}

	ctx.Redirect(http.StatusFound, redirect)
}
