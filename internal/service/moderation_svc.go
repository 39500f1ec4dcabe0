package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
	"otoada_api_v1_202609/pkg/utils"
)

// ==================== 审核服务 ====================

// transition 一条状态流转规则
type transition struct {
	from   []string // 允许的起始状态，空表示任意
	target string   // 目标状态，删除操作为空
}

// 流转表：审核后台允许的全部操作
// 驳回状态没有独立的删除入口，"全部"视图下的通用删除覆盖它
var transitions = map[string]transition{
	model.AdminActionApprove:   {from: []string{model.CarStatusPending}, target: model.CarStatusPublished},
	model.AdminActionReject:    {from: []string{model.CarStatusPending}, target: model.CarStatusRejected},
	model.AdminActionMarkSold:  {from: []string{model.CarStatusPublished}, target: model.CarStatusSold},
	model.AdminActionRepublish: {from: []string{model.CarStatusSold}, target: model.CarStatusPublished},
	model.AdminActionDelete:    {from: nil, target: ""}, // 任意状态可删，破坏性操作
}

// ModerationService 状态生命周期管理
// 所有变更走两步协议：先发起拿确认凭据，再确认执行
// 这样任何 UI (或自动化测试) 都能驱动确认，不依赖原生弹窗
type ModerationService struct {
	carRepo repository.CarRepository
	logRepo repository.AdminLogRepository
}

// NewModerationService 创建审核服务
func NewModerationService(carRepo repository.CarRepository, logRepo repository.AdminLogRepository) *ModerationService {
	return &ModerationService{carRepo: carRepo, logRepo: logRepo}
}

// ==================== 两步流转协议 ====================

// RequestTransition 第一步：校验并签发确认凭据 (10 分钟有效)
func (s *ModerationService) RequestTransition(ctx context.Context, carID, action string) (*dto.TransitionTicket, error) {
	rule, ok := transitions[action]
	if !ok {
		return nil, ErrUnknownAction
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}

	if !rule.allowedFrom(car.NormalizedStatus()) {
		return nil, ErrInvalidTransition
	}

	// 凭据缓存格式: action:car_id
	token := uuid.NewString()
	utils.SetCache(token, action+":"+carID, utils.DefaultCacheTTL)

	return &dto.TransitionTicket{
		Token:  token,
		CarID:  carID,
		Action: action,
	}, nil
}

// ConfirmTransition 第二步：消费凭据并落库
// 删除操作先清图片再删记录 (外键依赖)；图片清理失败只打日志不阻断
func (s *ModerationService) ConfirmTransition(ctx context.Context, token string, operatorID int64, operator string) error {
	cached, exists := utils.GetCache(token)
	if !exists {
		return ErrConfirmationExpired
	}
	utils.DeleteCache(token) // 用完即焚

	parts := strings.SplitN(cached, ":", 2)
	if len(parts) != 2 {
		return ErrConfirmationExpired
	}
	action, carID := parts[0], parts[1]
	rule := transitions[action]

	// 重新取车，凭据有效期内状态可能已经变了
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarNotFound
		}
		return err
	}
	from := car.NormalizedStatus()
	if !rule.allowedFrom(from) {
		return ErrInvalidTransition
	}

	if action == model.AdminActionDelete {
		if err := s.carRepo.DeleteImagesByCarID(ctx, carID); err != nil {
			log.Printf("删除车辆图片失败 (可能本就没有图片): %v", err)
		}
		if err := s.carRepo.Delete(ctx, carID); err != nil {
			return err
		}
	} else {
		if err := s.carRepo.UpdateStatus(ctx, carID, rule.target); err != nil {
			return err
		}
	}

	s.writeLog(ctx, operatorID, operator, action, carID, map[string]string{
		"from": from,
		"to":   rule.target,
	})
	return nil
}

func (t transition) allowedFrom(status string) bool {
	if len(t.from) == 0 {
		return true
	}
	for _, f := range t.from {
		if f == status {
			return true
		}
	}
	return false
}

// ==================== 编辑路径 ====================

// EditCar 字段编辑，publish 为真时同时强制上架
// 驳回的刊登只能从这里回到上架状态
func (s *ModerationService) EditCar(ctx context.Context, carID string, req *dto.EditCarRequest, publish bool, operatorID int64, operator string) error {
	// 入库前校验，校验失败不碰任何状态
	if strings.TrimSpace(req.Marka) == "" ||
		strings.TrimSpace(req.Model) == "" ||
		strings.TrimSpace(req.Satici) == "" {
		return ErrMissingRequired
	}
	if req.Fiyat <= 0 {
		return ErrInvalidPrice
	}

	if _, err := s.carRepo.GetByID(ctx, carID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCarNotFound
		}
		return err
	}

	fields := map[string]interface{}{
		"marka":       strings.TrimSpace(req.Marka),
		"model":       strings.TrimSpace(req.Model),
		"fiyat":       req.Fiyat,
		"para_birimi": normalizeCurrency(req.ParaBirimi),
		"satici":      strings.TrimSpace(req.Satici),
	}
	if publish {
		fields["durum"] = model.CarStatusPublished
	}

	if err := s.carRepo.UpdateFields(ctx, carID, fields); err != nil {
		return err
	}

	s.writeLog(ctx, operatorID, operator, model.AdminActionEdit, carID, map[string]interface{}{
		"fields":  fields,
		"publish": publish,
	})
	return nil
}

// writeLog 落审核日志，失败只打日志
func (s *ModerationService) writeLog(ctx context.Context, operatorID int64, operator, action, carID string, payload interface{}) {
	raw, _ := json.Marshal(payload)
	entry := &model.AdminActionLog{
		OperatorID: operatorID,
		Operator:   operator,
		Action:     action,
		CarID:      carID,
		Payload:    datatypes.JSON(raw),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		log.Printf("审核日志写入失败: %v", err)
	}
}
