package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/internal/service"
)

// ==================== CarController 公开目录控制器 ====================

// CarController 公开浏览/搜索/详情接口
type CarController struct {
	carRepo  repository.CarRepository
	catalog  *service.CatalogService
	currency *service.CurrencyService
}

// NewCarController 创建目录控制器
func NewCarController(carRepo repository.CarRepository, catalog *service.CatalogService, currency *service.CurrencyService) *CarController {
	return &CarController{
		carRepo:  carRepo,
		catalog:  catalog,
		currency: currency,
	}
}

// GetCars 在售车辆列表 (支持筛选)
// @Summary 在售车辆列表
// @Tags Cars
// @Produce json
// @Param search query string false "关键词"
// @Param marka query string false "品牌"
// @Param konum query string false "地区"
// @Param yakit query string false "燃料"
// @Param vites query string false "变速箱"
// @Param currency query string false "价格区间币种" default(STG)
// @Param min_price query number false "最低价"
// @Param max_price query number false "最高价"
// @Success 200 {object} map[string]interface{}
// @Router /cars [get]
func (c *CarController) GetCars(ctx *gin.Context) {
	// 只有在售的车对外可见，默认最新优先
	cars, err := c.carRepo.ListByStatus(ctx.Request.Context(), model.CarStatusPublished)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "数据加载失败: " + err.Error(),
		})
		return
	}

	criteria := service.FilterCriteria{
		Search:   ctx.Query("search"),
		Marka:    ctx.Query("marka"),
		Konum:    ctx.Query("konum"),
		Yakit:    ctx.Query("yakit"),
		Vites:    ctx.Query("vites"),
		Currency: ctx.DefaultQuery("currency", model.CurrencySTG),
	}
	criteria.MinPrice, _ = strconv.ParseFloat(ctx.Query("min_price"), 64)
	criteria.MaxPrice, _ = strconv.ParseFloat(ctx.Query("max_price"), 64)

	filtered := c.catalog.Filter(cars, criteria)
	views := c.catalog.NormalizeAll(filtered)

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"total": len(views),
			"cars":  views,
		},
	})
}

// GetCarDetail 车辆详情
// @Summary 车辆详情
// @Tags Cars
// @Produce json
// @Param id path string true "车辆 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /cars/{id} [get]
func (c *CarController) GetCarDetail(ctx *gin.Context) {
	id := ctx.Param("id")

	car, err := c.carRepo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": "刊登记录不存在",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    c.catalog.Normalize(car),
	})
}

// GetSimilarCars 详情页的同品牌推荐位
// @Summary 相似车辆
// @Tags Cars
// @Produce json
// @Param id path string true "车辆 ID"
// @Success 200 {object} map[string]interface{}
// @Router /cars/{id}/similar [get]
func (c *CarController) GetSimilarCars(ctx *gin.Context) {
	id := ctx.Param("id")

	car, err := c.carRepo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "刊登记录不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	similar, err := c.carRepo.ListSimilar(ctx.Request.Context(), car.Marka, car.ID, 3)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    c.catalog.NormalizeAll(similar),
	})
}

// GetRates 汇率行情 (带涨跌趋势)
// @Summary 汇率行情
// @Tags Rates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /rates [get]
func (c *CarController) GetRates(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    c.currency.Tickers(),
	})
}
