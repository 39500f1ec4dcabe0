package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/service"
)

// ==================== UploadController 刊登提交控制器 ====================

// 单张图片大小上限
const maxImageBytes = 10 << 20 // 10MB

// UploadController 刊登提交表单入口 (需登录)
type UploadController struct {
	listing *service.ListingService
}

// NewUploadController 创建提交控制器
func NewUploadController(listing *service.ListingService) *UploadController {
	return &UploadController{listing: listing}
}

// SubmitCar 提交新刊登 (multipart 表单 + 图片)
// @Summary 提交刊登
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param marka formData string true "品牌"
// @Param model formData string true "车型"
// @Param fiyat formData number true "价格"
// @Param images formData file true "图片 (最多 7 张)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /cars [post]
func (c *UploadController) SubmitCar(ctx *gin.Context) {
	var req dto.CreateCarRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "表单解析失败: " + err.Error(),
		})
		return
	}

	var images []service.ImageUpload
	for _, fh := range form.File["images"] {
		if fh.Size > maxImageBytes {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "图片过大: " + fh.Filename,
			})
			return
		}

		f, err := fh.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "图片读取失败: " + err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "图片读取失败: " + err.Error()})
			return
		}

		images = append(images, service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	view, err := c.listing.Submit(ctx.Request.Context(), &req, images)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrMissingRequired) ||
			errors.Is(err, service.ErrInvalidPrice) ||
			errors.Is(err, service.ErrTooManyImages) ||
			errors.Is(err, service.ErrNotAnImage) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{
			"code":    status,
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "刊登已提交，等待审核",
		"data":    view,
	})
}
