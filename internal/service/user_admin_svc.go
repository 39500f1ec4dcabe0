package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/pkg/utils"
)

// ==================== 用户管理服务 ====================

// UserAdminService 后台账号管理
// 角色变更和删除同样走两步协议：先发起拿确认凭据，再确认执行
// 管理员账号不从这个入口处理
type UserAdminService struct {
	userRepo repository.UserRepository
	logRepo  repository.AdminLogRepository
}

// NewUserAdminService 创建用户管理服务
func NewUserAdminService(userRepo repository.UserRepository, logRepo repository.AdminLogRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, logRepo: logRepo}
}

// ListUsers 按角色过滤用户列表，role 为空返回全部非管理员账号
func (s *UserAdminService) ListUsers(ctx context.Context, role string) ([]dto.AdminUserView, error) {
	if role != "" && !model.MemberRoles[role] {
		return nil, ErrInvalidRole
	}

	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}

	views := make([]dto.AdminUserView, 0, len(users))
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			continue // 管理员不出现在管理列表里
		}
		views = append(views, dto.AdminUserView{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Whatsapp:    u.Whatsapp,
			GalleryName: u.GalleryName,
			Role:        u.Role,
		})
	}
	return views, nil
}

// ==================== 两步操作协议 ====================

// RequestRoleChange 第一步：校验目标角色并签发确认凭据
func (s *UserAdminService) RequestRoleChange(ctx context.Context, userID int64, role string) (*dto.UserActionTicket, error) {
	if !model.MemberRoles[role] {
		return nil, ErrInvalidRole
	}
	if err := s.checkTarget(ctx, userID); err != nil {
		return nil, err
	}

	// 凭据缓存格式: action:user_id:role
	token := uuid.NewString()
	utils.SetCache(token, model.AdminActionSetRole+":"+strconv.FormatInt(userID, 10)+":"+role, utils.DefaultCacheTTL)

	return &dto.UserActionTicket{
		Token:  token,
		UserID: userID,
		Action: model.AdminActionSetRole,
		Role:   role,
	}, nil
}

// RequestDelete 第一步：签发删除确认凭据，删除不可恢复
func (s *UserAdminService) RequestDelete(ctx context.Context, userID int64) (*dto.UserActionTicket, error) {
	if err := s.checkTarget(ctx, userID); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	utils.SetCache(token, model.AdminActionDeleteUser+":"+strconv.FormatInt(userID, 10)+":", utils.DefaultCacheTTL)

	return &dto.UserActionTicket{
		Token:  token,
		UserID: userID,
		Action: model.AdminActionDeleteUser,
	}, nil
}

// ConfirmAction 第二步：消费凭据并落库
func (s *UserAdminService) ConfirmAction(ctx context.Context, token string, operatorID int64, operator string) error {
	cached, exists := utils.GetCache(token)
	if !exists {
		return ErrConfirmationExpired
	}
	utils.DeleteCache(token) // 用完即焚

	parts := strings.SplitN(cached, ":", 3)
	if len(parts) != 3 {
		return ErrConfirmationExpired
	}
	action, role := parts[0], parts[2]
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrConfirmationExpired
	}

	// 重新取用户，凭据有效期内账号可能已被删或升为管理员
	if err := s.checkTarget(ctx, userID); err != nil {
		return err
	}

	switch action {
	case model.AdminActionSetRole:
		if !model.MemberRoles[role] {
			return ErrInvalidRole
		}
		if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
			return err
		}
		s.writeLog(ctx, operatorID, operator, action, userID, map[string]string{"role": role})
	case model.AdminActionDeleteUser:
		if err := s.userRepo.Delete(ctx, userID); err != nil {
			return err
		}
		s.writeLog(ctx, operatorID, operator, action, userID, nil)
	default:
		return ErrUnknownAction
	}
	return nil
}

// checkTarget 目标账号必须存在且不是管理员
func (s *UserAdminService) checkTarget(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Role == model.RoleAdmin {
		return ErrAdminAccount
	}
	return nil
}

// writeLog 落操作日志，失败只打日志
func (s *UserAdminService) writeLog(ctx context.Context, operatorID int64, operator, action string, targetUserID int64, payload interface{}) {
	raw, _ := json.Marshal(payload)
	entry := &model.AdminActionLog{
		OperatorID:   operatorID,
		Operator:     operator,
		Action:       action,
		TargetUserID: targetUserID,
		Payload:      datatypes.JSON(raw),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("用户管理日志写入失败: %v", err)
	}
}
