package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 图床提供者接口
// 一次上传一张图，成功返回公开 URL，失败返回结构化错误
type StorageProvider interface {
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider string // "imgbb" | "s3" | "local"

	// imgbb
	ImgBBKey string

	// s3
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	CDNDomain string // CDN域名 (可选)

	// local
	BasePath string // 本地落盘目录
	BaseURL  string // 本地文件的对外前缀
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg *StorageConfig, client *resty.Client) (StorageProvider, error) {
	switch cfg.Provider {
	case "imgbb":
		return NewImgBBStorage(cfg, client), nil
	case "s3":
		return NewS3Storage(cfg)
	case "local":
		return NewLocalStorage(cfg), nil
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== ImgBB ====================

// ImgBBUploadURL 图床上传端点
const ImgBBUploadURL = "https://api.imgbb.com/1/upload"

// ImgBBStorage 通过 imgbb 图床托管图片
type ImgBBStorage struct {
	apiKey string
	client *resty.Client
}

var _ StorageProvider = (*ImgBBStorage)(nil)

func NewImgBBStorage(cfg *StorageConfig, client *resty.Client) *ImgBBStorage {
	return &ImgBBStorage{apiKey: cfg.ImgBBKey, client: client}
}

// imgbbResponse 图床响应
type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *ImgBBStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	var res imgbbResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.apiKey).
		SetFileReader("image", filename, bytes.NewReader(data)).
		SetResult(&res).
		SetError(&res).
		Post(ImgBBUploadURL)
	if err != nil {
		return "", fmt.Errorf("图床网络请求失败: %v", err)
	}

	if resp.StatusCode() != 200 || !res.Success {
		msg := res.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("状态码 %d", resp.StatusCode())
		}
		return "", fmt.Errorf("图床拒绝上传: %s", msg)
	}

	return res.Data.URL, nil
}

// ==================== S3 ====================

// S3Storage S3 兼容对象存储
type S3Storage struct {
	client *s3.Client
	cfg    *StorageConfig
}

var _ StorageProvider = (*S3Storage)(nil)

func NewS3Storage(cfg *StorageConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 S3 配置失败: %v", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := objectKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3 上传失败: %v", err)
	}

	if s.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cfg.CDNDomain, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key), nil
}

// ==================== 本地落盘 ====================

// LocalStorage 本地文件存储 (开发/测试)
type LocalStorage struct {
	cfg *StorageConfig
}

var _ StorageProvider = (*LocalStorage)(nil)

func NewLocalStorage(cfg *StorageConfig) *LocalStorage {
	return &LocalStorage{cfg: cfg}
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := objectKey(filename)
	path := filepath.Join(s.cfg.BasePath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + key, nil
}

// objectKey 按日期分目录 + uuid 防止文件名冲突
func objectKey(filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("cars/%s/%s%s",
		time.Now().Format("200601"), uuid.NewString(), ext)
}
