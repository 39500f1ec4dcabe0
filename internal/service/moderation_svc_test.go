package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
)

// ==================== 测试辅助函数 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.Car{}, &model.CarImage{}, &model.SysUser{}, &model.AdminActionLog{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

func newTestModeration(t *testing.T) (*ModerationService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewModerationService(
		repository.NewCarRepository(db),
		repository.NewAdminLogRepository(db),
	)
	return svc, db
}

func createTestCar(t *testing.T, db *gorm.DB, durum string) *model.Car {
	car := &model.Car{
		Marka:      "BMW",
		Model:      "320i",
		Fiyat:      15000,
		ParaBirimi: "STG",
		Durum:      durum,
		Satici:     "Test Satıcı",
	}
	if err := db.Create(car).Error; err != nil {
		t.Fatalf("创建测试车辆失败: %v", err)
	}
	return car
}

// ==================== 两步流转测试 ====================

func TestModerationService_ApproveFlow(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPending)

	// 第一步：发起，拿确认凭据
	ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionApprove)
	if err != nil {
		t.Fatalf("RequestTransition() error = %v", err)
	}
	if ticket.Token == "" || ticket.CarID != car.ID || ticket.Action != model.AdminActionApprove {
		t.Fatalf("凭据内容不对: %+v", ticket)
	}

	// 发起阶段不应动状态
	var mid model.Car
	db.First(&mid, "id = ?", car.ID)
	if mid.Durum != model.CarStatusPending {
		t.Errorf("发起后状态 = %s, 应仍为待审核", mid.Durum)
	}

	// 第二步：确认执行
	if err := svc.ConfirmTransition(ctx, ticket.Token, 1, "admin@test.local"); err != nil {
		t.Fatalf("ConfirmTransition() error = %v", err)
	}

	var updated model.Car
	db.First(&updated, "id = ?", car.ID)
	if updated.Durum != model.CarStatusPublished {
		t.Errorf("确认后 Durum = %s, want %s", updated.Durum, model.CarStatusPublished)
	}

	// 审核日志落库
	var logs []model.AdminActionLog
	db.Where("car_id = ?", car.ID).Find(&logs)
	if len(logs) != 1 || logs[0].Action != model.AdminActionApprove {
		t.Errorf("应有一条 approve 日志, got %+v", logs)
	}
	if logs[0].Operator != "admin@test.local" {
		t.Errorf("日志操作人 = %s, want admin@test.local", logs[0].Operator)
	}
}

func TestModerationService_EmptyStatusTreatedAsPending(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	// 历史数据里 durum 为空的记录也能走审核
	car := createTestCar(t, db, "")

	ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionReject)
	if err != nil {
		t.Fatalf("空状态发起驳回失败: %v", err)
	}
	if err := svc.ConfirmTransition(ctx, ticket.Token, 1, "admin"); err != nil {
		t.Fatalf("ConfirmTransition() error = %v", err)
	}

	var updated model.Car
	db.First(&updated, "id = ?", car.ID)
	if updated.Durum != model.CarStatusRejected {
		t.Errorf("Durum = %s, want %s", updated.Durum, model.CarStatusRejected)
	}
}

func TestModerationService_InvalidTransition(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	// 已上架的车不能再审核通过
	car := createTestCar(t, db, model.CarStatusPublished)

	_, err := svc.RequestTransition(ctx, car.ID, model.AdminActionApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}

	// 待审核的车不能直接标已售
	pending := createTestCar(t, db, model.CarStatusPending)
	_, err = svc.RequestTransition(ctx, pending.ID, model.AdminActionMarkSold)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestModerationService_UnknownAction(t *testing.T) {
	svc, db := newTestModeration(t)
	car := createTestCar(t, db, model.CarStatusPending)

	_, err := svc.RequestTransition(context.Background(), car.ID, "explode")
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("error = %v, want ErrUnknownAction", err)
	}
}

func TestModerationService_CarNotFound(t *testing.T) {
	svc, _ := newTestModeration(t)

	_, err := svc.RequestTransition(context.Background(), "no-such-car", model.AdminActionApprove)
	if !errors.Is(err, ErrCarNotFound) {
		t.Errorf("error = %v, want ErrCarNotFound", err)
	}
}

func TestModerationService_ExpiredToken(t *testing.T) {
	svc, _ := newTestModeration(t)

	err := svc.ConfirmTransition(context.Background(), "made-up-token", 1, "admin")
	if !errors.Is(err, ErrConfirmationExpired) {
		t.Errorf("error = %v, want ErrConfirmationExpired", err)
	}
}

func TestModerationService_TokenSingleUse(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPending)
	ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionApprove)
	if err != nil {
		t.Fatalf("RequestTransition() error = %v", err)
	}

	if err := svc.ConfirmTransition(ctx, ticket.Token, 1, "admin"); err != nil {
		t.Fatalf("首次确认失败: %v", err)
	}

	// 凭据用完即焚，重放必须失败
	err = svc.ConfirmTransition(ctx, ticket.Token, 1, "admin")
	if !errors.Is(err, ErrConfirmationExpired) {
		t.Errorf("重放 error = %v, want ErrConfirmationExpired", err)
	}
}

func TestModerationService_StatusChangedBetweenSteps(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPending)
	ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionApprove)
	if err != nil {
		t.Fatalf("RequestTransition() error = %v", err)
	}

	// 凭据有效期内另一个管理员把车驳回了
	db.Model(&model.Car{}).Where("id = ?", car.ID).Update("durum", model.CarStatusRejected)

	err = svc.ConfirmTransition(ctx, ticket.Token, 1, "admin")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}
}

// ==================== 删除测试 ====================

func TestModerationService_DeleteRemovesImages(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPublished)
	images := []model.CarImage{
		{CarID: car.ID, ImageURL: "https://img/1.jpg", DisplayOrder: 0},
		{CarID: car.ID, ImageURL: "https://img/2.jpg", DisplayOrder: 1},
	}
	if err := db.Create(&images).Error; err != nil {
		t.Fatalf("创建测试图片失败: %v", err)
	}

	ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionDelete)
	if err != nil {
		t.Fatalf("RequestTransition() error = %v", err)
	}
	if err := svc.ConfirmTransition(ctx, ticket.Token, 1, "admin"); err != nil {
		t.Fatalf("ConfirmTransition() error = %v", err)
	}

	// 先删图片再删主记录，两边都应消失
	var carCount, imageCount int64
	db.Model(&model.Car{}).Where("id = ?", car.ID).Count(&carCount)
	db.Model(&model.CarImage{}).Where("car_id = ?", car.ID).Count(&imageCount)

	if carCount != 0 {
		t.Errorf("车辆记录还在, count = %d", carCount)
	}
	if imageCount != 0 {
		t.Errorf("图片记录还在, count = %d", imageCount)
	}
}

func TestModerationService_DeleteFromAnyStatus(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	// 驳回的刊登走"全部"视图的通用删除
	for _, durum := range []string{
		model.CarStatusPending,
		model.CarStatusPublished,
		model.CarStatusSold,
		model.CarStatusRejected,
	} {
		car := createTestCar(t, db, durum)
		ticket, err := svc.RequestTransition(ctx, car.ID, model.AdminActionDelete)
		if err != nil {
			t.Fatalf("状态 %s 发起删除失败: %v", durum, err)
		}
		if err := svc.ConfirmTransition(ctx, ticket.Token, 1, "admin"); err != nil {
			t.Fatalf("状态 %s 确认删除失败: %v", durum, err)
		}
	}
}

// ==================== 编辑测试 ====================

func TestModerationService_EditCar(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusRejected)

	req := &dto.EditCarRequest{
		Marka:      "  Mercedes  ",
		Model:      "C200",
		Fiyat:      22000,
		ParaBirimi: "EUR",
		Satici:     "Yeni Satıcı",
	}

	// publish=true: 驳回的刊登从编辑路径回到上架
	if err := svc.EditCar(ctx, car.ID, req, true, 7, "admin@test.local"); err != nil {
		t.Fatalf("EditCar() error = %v", err)
	}

	var updated model.Car
	db.First(&updated, "id = ?", car.ID)

	if updated.Marka != "Mercedes" {
		t.Errorf("Marka = %q, want 去空白后的 Mercedes", updated.Marka)
	}
	if updated.Fiyat != 22000 || updated.ParaBirimi != "EUR" {
		t.Errorf("价格未更新: %f %s", updated.Fiyat, updated.ParaBirimi)
	}
	if updated.Durum != model.CarStatusPublished {
		t.Errorf("publish=true 后 Durum = %s, want %s", updated.Durum, model.CarStatusPublished)
	}

	var logs []model.AdminActionLog
	db.Where("car_id = ? AND action = ?", car.ID, model.AdminActionEdit).Find(&logs)
	if len(logs) != 1 {
		t.Errorf("应有一条 edit 日志, got %d", len(logs))
	}
}

func TestModerationService_EditCar_NoPublish(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPending)

	req := &dto.EditCarRequest{Marka: "BMW", Model: "330e", Fiyat: 18000, ParaBirimi: "STG", Satici: "Satıcı"}
	if err := svc.EditCar(ctx, car.ID, req, false, 1, "admin"); err != nil {
		t.Fatalf("EditCar() error = %v", err)
	}

	var updated model.Car
	db.First(&updated, "id = ?", car.ID)
	if updated.Durum != model.CarStatusPending {
		t.Errorf("publish=false 不应动状态, Durum = %s", updated.Durum)
	}
}

func TestModerationService_EditCar_Validation(t *testing.T) {
	svc, db := newTestModeration(t)
	ctx := context.Background()

	car := createTestCar(t, db, model.CarStatusPending)

	tests := []struct {
		name    string
		req     *dto.EditCarRequest
		wantErr error
	}{
		{"品牌为空", &dto.EditCarRequest{Model: "A4", Fiyat: 1, Satici: "x"}, ErrMissingRequired},
		{"品牌全空白", &dto.EditCarRequest{Marka: "   ", Model: "A4", Fiyat: 1, Satici: "x"}, ErrMissingRequired},
		{"卖家为空", &dto.EditCarRequest{Marka: "Audi", Model: "A4", Fiyat: 1}, ErrMissingRequired},
		{"价格为零", &dto.EditCarRequest{Marka: "Audi", Model: "A4", Fiyat: 0, Satici: "x"}, ErrInvalidPrice},
		{"价格为负", &dto.EditCarRequest{Marka: "Audi", Model: "A4", Fiyat: -5, Satici: "x"}, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.EditCar(ctx, car.ID, tt.req, false, 1, "admin")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// 校验失败不碰任何状态
	var untouched model.Car
	db.First(&untouched, "id = ?", car.ID)
	if untouched.Marka != "BMW" {
		t.Errorf("校验失败后字段被改动了: %s", untouched.Marka)
	}
}
