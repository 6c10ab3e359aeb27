package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_tools_v1_202608/internal/service"
)

type BookmarkController struct {
	bookmarkSvc *service.BookmarkService
}

func NewBookmarkController(bookmarkSvc *service.BookmarkService) *BookmarkController {
	return &BookmarkController{
		bookmarkSvc: bookmarkSvc,
	}
}

// ==================== 请求体 ====================

type manageBookmarksReq struct {
	ShopName string `json:"shopName"`
	Action   string `json:"action"`
	Title    string `json:"title"`
}

// ManageBookmarks 收藏管理
// @Summary 收藏管理
// @Description action 取 add/remove/get/clear，add/remove 需要 title，返回操作后的完整列表
// @Tags Bookmark (收藏)
// @Accept json
// @Produce json
// @Param request body manageBookmarksReq true "操作参数"
// @Success 200 {object} map[string]interface{} "{"success", "data": {"titles", "count"}}"
// @Failure 400 {object} map[string]interface{} "参数缺失或 action 非法"
// @Failure 401 {object} map[string]interface{} "店铺未授权"
// @Router /manage-bookmarks [post]
func (c *BookmarkController) ManageBookmarks(ctx *gin.Context) {
	var req manageBookmarksReq
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ShopName == "" || req.Action == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Shop name and action are required",
		})
		return
	}

	if (req.Action == service.BookmarkActionAdd || req.Action == service.BookmarkActionRemove) && req.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Title is required for add/remove actions",
		})
		return
	}

	titles, err := c.bookmarkSvc.Manage(ctx.Request.Context(), req.ShopName, req.Action, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAuthenticated):
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":        false,
				"error":          "Shop not authenticated",
				"redirectToAuth": fmt.Sprintf("/auth?shop=%s", req.ShopName),
			})
		case errors.Is(err, service.ErrInvalidAction):
			ctx.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid action",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to manage bookmarks",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"titles": titles,
			"count":  len(titles),
		},
		"message": fmt.Sprintf("Bookmark %s successful", req.Action),
	})
}
