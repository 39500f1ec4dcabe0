package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/middleware"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/internal/service"
)

// ==================== AdminController 审核后台控制器 ====================

// AdminController 审核后台：分桶列表、状态流转、编辑、用户管理、日志
type AdminController struct {
	carRepo    repository.CarRepository
	logRepo    repository.AdminLogRepository
	catalog    *service.CatalogService
	moderation *service.ModerationService
	userAdmin  *service.UserAdminService
}

// NewAdminController 创建后台控制器
func NewAdminController(
	carRepo repository.CarRepository,
	logRepo repository.AdminLogRepository,
	catalog *service.CatalogService,
	moderation *service.ModerationService,
	userAdmin *service.UserAdminService,
) *AdminController {
	return &AdminController{
		carRepo:    carRepo,
		logRepo:    logRepo,
		catalog:    catalog,
		moderation: moderation,
		userAdmin:  userAdmin,
	}
}

// ListCars 后台车辆列表，按状态分桶
// @Summary 后台车辆列表
// @Tags Admin
// @Produce json
// @Param status query string false "pending / published / sold / rejected / all" default(pending)
// @Success 200 {object} map[string]interface{}
// @Router /admin/cars [get]
func (c *AdminController) ListCars(ctx *gin.Context) {
	cars, err := c.carRepo.ListAll(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	bucket := ctx.DefaultQuery("status", "pending")
	filtered := c.catalog.FilterByStatus(cars, bucket)

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"total": len(filtered),
			"cars":  c.catalog.NormalizeAll(filtered),
		},
	})
}

// RequestTransition 发起状态流转 (第一步，拿确认凭据)
// @Summary 发起状态流转
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "车辆 ID"
// @Param request body dto.TransitionRequest true "操作"
// @Success 200 {object} dto.TransitionTicket
// @Failure 400 {object} map[string]interface{}
// @Router /admin/cars/{id}/transition [post]
func (c *AdminController) RequestTransition(ctx *gin.Context) {
	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ticket, err := c.moderation.RequestTransition(ctx.Request.Context(), ctx.Param("id"), req.Action)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "待确认",
		"data":    ticket,
	})
}

// ConfirmTransition 确认执行 (第二步)
// @Summary 确认状态流转
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.ConfirmTransitionRequest true "确认凭据"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /admin/transitions/confirm [post]
func (c *AdminController) ConfirmTransition(ctx *gin.Context) {
	var req dto.ConfirmTransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	err := c.moderation.ConfirmTransition(
		ctx.Request.Context(),
		req.Token,
		middleware.GetUserID(ctx),
		middleware.GetUserEmail(ctx),
	)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "操作已生效",
	})
}

// EditCar 编辑刊登，publish=true 时同时强制上架
// @Summary 编辑刊登
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "车辆 ID"
// @Param publish query bool false "保存并上架"
// @Param request body dto.EditCarRequest true "编辑内容"
// @Success 200 {object} map[string]interface{}
// @Router /admin/cars/{id} [put]
func (c *AdminController) EditCar(ctx *gin.Context) {
	var req dto.EditCarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	publish := ctx.Query("publish") == "true" || ctx.Query("publish") == "1"

	err := c.moderation.EditCar(
		ctx.Request.Context(),
		ctx.Param("id"),
		&req,
		publish,
		middleware.GetUserID(ctx),
		middleware.GetUserEmail(ctx),
	)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	msg := "刊登已保存"
	if publish {
		msg = "刊登已保存并上架"
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 0, "message": msg})
}

// ListAuditLogs 审核操作日志
// @Summary 审核日志
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/audit-logs [get]
func (c *AdminController) ListAuditLogs(ctx *gin.Context) {
	logs, err := c.logRepo.ListRecent(ctx.Request.Context(), 100)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    logs,
	})
}

// ==================== 用户管理 ====================

// ListUsers 后台用户列表
// @Summary 后台用户列表
// @Tags Admin
// @Produce json
// @Param role query string false "member / gallery / ambassador，空为全部"
// @Success 200 {object} map[string]interface{}
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.userAdmin.ListUsers(ctx.Request.Context(), ctx.Query("role"))
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data": gin.H{
			"total": len(users),
			"users": users,
		},
	})
}

// UpdateUserRole 发起角色变更 (第一步，拿确认凭据)
// @Summary 发起用户角色变更
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "用户 ID"
// @Param request body dto.UpdateUserRoleRequest true "目标角色"
// @Success 200 {object} dto.UserActionTicket
// @Failure 400 {object} map[string]interface{}
// @Router /admin/users/{id}/role [put]
func (c *AdminController) UpdateUserRole(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的用户 ID"})
		return
	}

	var req dto.UpdateUserRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ticket, err := c.userAdmin.RequestRoleChange(ctx.Request.Context(), userID, req.Role)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "待确认",
		"data":    ticket,
	})
}

// DeleteUser 发起删除用户 (第一步，拿确认凭据)，删除不可恢复
// @Summary 发起删除用户
// @Tags Admin
// @Produce json
// @Param id path int true "用户 ID"
// @Success 200 {object} dto.UserActionTicket
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的用户 ID"})
		return
	}

	ticket, err := c.userAdmin.RequestDelete(ctx.Request.Context(), userID)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "待确认",
		"data":    ticket,
	})
}

// ConfirmUserAction 确认执行用户管理操作 (第二步)
// @Summary 确认用户管理操作
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.ConfirmTransitionRequest true "确认凭据"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /admin/users/confirm [post]
func (c *AdminController) ConfirmUserAction(ctx *gin.Context) {
	var req dto.ConfirmTransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	err := c.userAdmin.ConfirmAction(
		ctx.Request.Context(),
		req.Token,
		middleware.GetUserID(ctx),
		middleware.GetUserEmail(ctx),
	)
	if err != nil {
		c.writeModerationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "操作已生效",
	})
}

// writeModerationError 审核类错误统一映射
func (c *AdminController) writeModerationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCarNotFound),
		errors.Is(err, service.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": err.Error()})
	case errors.Is(err, service.ErrUnknownAction),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConfirmationExpired),
		errors.Is(err, service.ErrMissingRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrAdminAccount):
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
	}
}
