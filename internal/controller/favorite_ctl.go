package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"otoada_api_v1_202609/internal/service"
)

// ==================== FavoriteController 收藏夹控制器 ====================

// 设备标识请求头，前端为每台设备生成并固定一个随机 ID
const deviceIDHeader = "X-Device-ID"

// FavoriteController 设备级收藏夹接口
type FavoriteController struct {
	favorites *service.FavoritesService
}

// NewFavoriteController 创建收藏夹控制器
func NewFavoriteController(favorites *service.FavoritesService) *FavoriteController {
	return &FavoriteController{favorites: favorites}
}

// deviceID 取设备标识，没有就拒绝
func deviceID(ctx *gin.Context) (string, bool) {
	id := ctx.GetHeader(deviceIDHeader)
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 X-Device-ID 请求头",
		})
		return "", false
	}
	return id, true
}

// ListFavorites 收藏页：取回收藏的车辆
// @Summary 收藏列表
// @Tags Favorites
// @Produce json
// @Param X-Device-ID header string true "设备标识"
// @Success 200 {object} map[string]interface{}
// @Router /favorites [get]
func (c *FavoriteController) ListFavorites(ctx *gin.Context) {
	device, ok := deviceID(ctx)
	if !ok {
		return
	}

	cars, err := c.favorites.ListCars(ctx.Request.Context(), device)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    cars,
	})
}

// ListFavoriteIDs 收藏 ID 列表 (列表页渲染红心用)
// @Summary 收藏 ID 列表
// @Tags Favorites
// @Produce json
// @Param X-Device-ID header string true "设备标识"
// @Success 200 {object} map[string]interface{}
// @Router /favorites/ids [get]
func (c *FavoriteController) ListFavoriteIDs(ctx *gin.Context) {
	device, ok := deviceID(ctx)
	if !ok {
		return
	}

	ids := c.favorites.Favorites(ctx.Request.Context(), device)
	if ids == nil {
		ids = []string{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    ids,
	})
}

// ToggleFavorite 翻转收藏状态
// @Summary 收藏/取消收藏
// @Tags Favorites
// @Produce json
// @Param X-Device-ID header string true "设备标识"
// @Param id path string true "车辆 ID"
// @Success 200 {object} map[string]interface{}
// @Router /favorites/{id}/toggle [post]
func (c *FavoriteController) ToggleFavorite(ctx *gin.Context) {
	device, ok := deviceID(ctx)
	if !ok {
		return
	}

	favorited, err := c.favorites.Toggle(ctx.Request.Context(), device, ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    gin.H{"favorited": favorited},
	})
}
