package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ==================== 状态常量 ====================

// 车辆状态 (存储值沿用土耳其语业务词汇，与历史数据兼容)
const (
	CarStatusPending   = "Onay Bekliyor" // 待审核 (初始状态，空值等价)
	CarStatusPublished = "Yayında"       // 已上架
	CarStatusSold      = "Satıldı"       // 已售出
	CarStatusRejected  = "Reddedildi"    // 已驳回
)

// 币种常量 (基准货币为 STG)
const (
	CurrencySTG = "STG"
	CurrencyTL  = "TL"
	CurrencyEUR = "EUR"
)

// ==================== Car 车辆信息 ====================

// Car 一条车辆刊登记录
// ID 为 uuid 字符串，由 BeforeCreate 钩子生成，外部视为不透明标识
type Car struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"` // 默认排序键 (最新优先)
	UpdatedAt time.Time `json:"updated_at"`
	AuditMixin

	// --- 车辆基本信息 ---
	Marka string `gorm:"size:100;index" json:"marka"` // 品牌
	Model string `gorm:"size:100" json:"model"`

	// --- 价格 ---
	Fiyat      float64 `gorm:"default:0" json:"fiyat"`                        // 必须 >= 0
	ParaBirimi string  `gorm:"size:5;default:'STG'" json:"para_birimi"`       // STG / TL / EUR
	Durum      string  `gorm:"size:30;index;default:'Onay Bekliyor'" json:"durum"`

	// --- 可选描述字段 ---
	Yil       int    `gorm:"default:0" json:"yil"`
	KM        int    `gorm:"default:0" json:"km"`
	Yakit     string `gorm:"size:50" json:"yakit"` // 燃料类型
	Vites     string `gorm:"size:50" json:"vites"` // 变速箱
	KasaTipi  string `gorm:"size:50" json:"kasa_tipi"`
	Renk      string `gorm:"size:50" json:"renk"`
	Konum     string `gorm:"size:100;index" json:"konum"`
	Aciklama  string `gorm:"type:text" json:"aciklama"`
	Satici    string `gorm:"size:100" json:"satici"`
	Telefon   string `gorm:"size:30" json:"telefon"`
	Ekspertiz string `gorm:"type:text" json:"ekspertiz"`

	// --- 关联关系 ---
	Images []CarImage `gorm:"foreignKey:CarID" json:"car_images"`
}

func (Car) TableName() string {
	return "cars"
}

// BeforeCreate 生成 uuid 主键
func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// NormalizedStatus 返回规范化状态
// 空值或未识别的状态一律按待审核处理，绝不报错
func (c *Car) NormalizedStatus() string {
	switch c.Durum {
	case CarStatusPublished, CarStatusSold, CarStatusRejected:
		return c.Durum
	default:
		return CarStatusPending
	}
}

// ==================== CarImage 车辆图片 ====================

// CarImage 车辆图片子记录，display_order 即展示顺序
type CarImage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CarID string `gorm:"size:36;index;not null" json:"car_id"`
	Car   *Car   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ImageURL     string `gorm:"size:512" json:"image_url"`
	ThumbnailURL string `gorm:"size:512" json:"thumbnail_url"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
}

func (CarImage) TableName() string {
	return "car_images"
}

func (i *CarImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
