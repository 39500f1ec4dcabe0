package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建一个配置好超时的 Resty 客户端
// 汇率查询 / 图床上传 统一走这里
func NewHTTPClient() *resty.Client {
	client := resty.New().
		SetTimeout(20*time.Second).                 // 图片上传可能比较慢，给 20s
		SetHeader("User-Agent", "Otoada-Go-App/1.0") // 模拟标准 UA

	return client
}
