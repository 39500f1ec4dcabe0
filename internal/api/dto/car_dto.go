package dto

import "time"

// ==================== 对外视图 ====================

// CarImageView 图片视图
type CarImageView struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
}

// CarView 规范化后的车辆视图
// 存储层的杂乱命名在归一化时一次性抹平，下游只见这一种形状
type CarView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_time"`

	Marka      string  `json:"marka"`
	Model      string  `json:"model"`
	Fiyat      float64 `json:"fiyat"`
	ParaBirimi string  `json:"para_birimi"`
	Durum      string  `json:"durum"`

	Yil       int    `json:"yil,omitempty"`
	KM        int    `json:"km,omitempty"`
	Yakit     string `json:"yakit,omitempty"`
	Vites     string `json:"vites,omitempty"`
	KasaTipi  string `json:"kasa_tipi,omitempty"`
	Renk      string `json:"renk,omitempty"`
	Konum     string `json:"konum,omitempty"`
	Aciklama  string `json:"aciklama,omitempty"`
	Satici    string `json:"satici,omitempty"`
	Telefon   string `json:"telefon,omitempty"`
	Ekspertiz string `json:"ekspertiz,omitempty"`

	// 首图 (display_order 最小的一张，优先原图)
	ImageURL string         `json:"image_url,omitempty"`
	Images   []CarImageView `json:"images,omitempty"`

	// 格式化后的价格，如 "£15,000"
	FormattedPrice string `json:"formatted_price,omitempty"`
}

// ==================== 提交 / 编辑 ====================

// CreateCarRequest 刊登提交表单
type CreateCarRequest struct {
	Marka      string  `form:"marka" json:"marka"`
	Model      string  `form:"model" json:"model"`
	Fiyat      float64 `form:"fiyat" json:"fiyat"`
	ParaBirimi string  `form:"para_birimi" json:"para_birimi"`
	Yil        int     `form:"yil" json:"yil"`
	KM         int     `form:"km" json:"km"`
	Yakit      string  `form:"yakit" json:"yakit"`
	Vites      string  `form:"vites" json:"vites"`
	KasaTipi   string  `form:"kasa_tipi" json:"kasa_tipi"`
	Renk       string  `form:"renk" json:"renk"`
	Konum      string  `form:"konum" json:"konum"`
	Aciklama   string  `form:"aciklama" json:"aciklama"`
	Satici     string  `form:"satici" json:"satici"`
	Telefon    string  `form:"telefon" json:"telefon"`
}

// EditCarRequest 后台编辑表单 (可同时强制上架)
type EditCarRequest struct {
	Marka      string  `json:"marka"`
	Model      string  `json:"model"`
	Fiyat      float64 `json:"fiyat"`
	ParaBirimi string  `json:"para_birimi"`
	Satici     string  `json:"satici"`
}

// ==================== 状态流转 ====================

// TransitionRequest 发起状态流转 (第一步)
type TransitionRequest struct {
	Action string `json:"action" binding:"required"` // approve / reject / mark_sold / republish / delete
}

// TransitionTicket 待确认的流转凭据
type TransitionTicket struct {
	Token  string `json:"token"`
	CarID  string `json:"car_id"`
	Action string `json:"action"`
}

// ConfirmTransitionRequest 确认执行 (第二步)
type ConfirmTransitionRequest struct {
	Token string `json:"token" binding:"required"`
}

// ==================== 汇率行情 ====================

// RateTicker 汇率行情条目 (带涨跌趋势)
type RateTicker struct {
	Pair  string  `json:"pair"`  // 如 "STG/TL"
	Rate  float64 `json:"rate"`  // 1 STG 等值多少目标币
	Trend string  `json:"trend"` // up / down / same
}
