package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"otoada_api_v1_202609/internal/api/dto"
	"otoada_api_v1_202609/internal/model"
	"otoada_api_v1_202609/internal/repository"
)

// ==================== 刊登提交服务 ====================

// MaxSubmissionImages 单次提交的图片上限
const MaxSubmissionImages = 7

// ImageUpload 待上传的图片文件
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListingService 刊登提交流程
// 校验 -> 并发上传图片 -> 写车辆主记录 -> 写图片子记录
type ListingService struct {
	carRepo repository.CarRepository
	storage StorageProvider
	catalog *CatalogService
}

// NewListingService 创建提交服务
func NewListingService(carRepo repository.CarRepository, storage StorageProvider, catalog *CatalogService) *ListingService {
	return &ListingService{
		carRepo: carRepo,
		storage: storage,
		catalog: catalog,
	}
}

// Submit 提交一条新刊登
// 图片全部并发上传，任何一张失败整个提交作废 (已传成功的远端图片不回收)
// 主记录写入成功后图片子记录写失败只打日志，刊登照样可用
func (s *ListingService) Submit(ctx context.Context, req *dto.CreateCarRequest, images []ImageUpload) (*dto.CarView, error) {
	// 1. 网络调用前的同步校验
	if strings.TrimSpace(req.Marka) == "" ||
		strings.TrimSpace(req.Model) == "" ||
		len(images) == 0 {
		return nil, ErrMissingRequired
	}
	if req.Fiyat <= 0 {
		return nil, ErrInvalidPrice
	}
	if len(images) > MaxSubmissionImages {
		return nil, ErrTooManyImages
	}
	for _, img := range images {
		if !strings.HasPrefix(img.ContentType, "image/") {
			return nil, ErrNotAnImage
		}
	}

	// 2. 并发上传全部图片，等全部完成
	urls, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	// 3. 写主记录，状态强制为待审核
	car := &model.Car{
		Marka:      strings.TrimSpace(req.Marka),
		Model:      strings.TrimSpace(req.Model),
		Fiyat:      req.Fiyat,
		ParaBirimi: normalizeCurrency(req.ParaBirimi),
		Durum:      model.CarStatusPending,
		Yil:        req.Yil,
		KM:         req.KM,
		Yakit:      strings.TrimSpace(req.Yakit),
		Vites:      strings.TrimSpace(req.Vites),
		KasaTipi:   strings.TrimSpace(req.KasaTipi),
		Renk:       strings.TrimSpace(req.Renk),
		Konum:      strings.TrimSpace(req.Konum),
		Aciklama:   strings.TrimSpace(req.Aciklama),
		Satici:     strings.TrimSpace(req.Satici),
		Telefon:    strings.TrimSpace(req.Telefon),
	}
	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, err
	}

	// 4. 写图片子记录，display_order 即上传顺序
	imageRows := make([]model.CarImage, 0, len(urls))
	for i, url := range urls {
		imageRows = append(imageRows, model.CarImage{
			CarID:        car.ID,
			ImageURL:     url,
			DisplayOrder: i,
		})
	}
	if err := s.carRepo.CreateImages(ctx, imageRows); err != nil {
		// 主记录已经在了，没图也能用，不回滚
		log.Printf("车辆已创建但图片子记录写入失败 (car_id=%s): %v", car.ID, err)
	} else {
		car.Images = imageRows
	}

	view := s.catalog.Normalize(car)
	return &view, nil
}

// uploadAll 并发上传，返回与输入同序的 URL 列表
func (s *ListingService) uploadAll(ctx context.Context, images []ImageUpload) ([]string, error) {
	urls := make([]string, len(images))
	errs := make([]error, len(images))

	var wg sync.WaitGroup
	for i := range images {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			img := images[idx]
			url, err := s.storage.Upload(ctx, img.Data, img.Filename, img.ContentType)
			if err != nil {
				errs[idx] = err
				return
			}
			urls[idx] = url
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return urls, nil
}
