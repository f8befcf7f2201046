package service

import (
	"errors"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"

	"gorm.io/gorm"
)

// ProductService 接口定义了产品档案相关的业务操作。
type ProductService interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uint) error
	Get(id uint) (*model.Product, error)
	List() ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建一个新的 ProductService 实例。
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) Create(product *model.Product) error {
	if product.Name == "" || product.Code == "" {
		return errors.New("产品名称与编码不能为空")
	}
	return s.productRepo.Create(product)
}

func (s *productService) Update(product *model.Product) error {
	// 先确认记录存在，避免 Save 把不存在的 ID 变成插入
	if _, err := s.productRepo.FindByID(product.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("产品不存在")
		}
		return err
	}
	return s.productRepo.Update(product)
}

func (s *productService) Delete(id uint) error {
	return s.productRepo.Delete(id)
}

func (s *productService) Get(id uint) (*model.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *productService) List() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
