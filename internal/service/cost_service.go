package service

import (
	"errors"
	"time"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
)

// CostService 接口定义了三类成本记录的业务操作。
type CostService interface {
	RecordProductionCost(record *model.ProductionCost) error
	RecordTransportationCost(record *model.TransportationCost) error
	RecordInstallationCost(record *model.InstallationCost) error

	ListProductionCosts(productID *uint, startDate, endDate *time.Time) ([]model.ProductionCost, error)
	ListTransportationCosts(projectID *uint) ([]model.TransportationCost, error)
	ListInstallationCosts(projectID *uint) ([]model.InstallationCost, error)
}

type costService struct {
	costRepo    repository.CostRepository
	productRepo repository.ProductRepository
	projectRepo repository.ProjectRepository
}

// NewCostService 创建一个新的 CostService 实例。
func NewCostService(costRepo repository.CostRepository, productRepo repository.ProductRepository, projectRepo repository.ProjectRepository) CostService {
	return &costService{
		costRepo:    costRepo,
		productRepo: productRepo,
		projectRepo: projectRepo,
	}
}

// RecordProductionCost 校验并写入一条生产成本记录。
func (s *costService) RecordProductionCost(record *model.ProductionCost) error {
	if record.Quantity <= 0 {
		return errors.New("生产数量必须大于 0")
	}
	if record.UnitCost < 0 {
		return errors.New("单位成本不能为负数")
	}
	// 关联产品必须存在
	if _, err := s.productRepo.FindByID(record.ProductID); err != nil {
		return errors.New("关联的产品不存在")
	}
	return s.costRepo.CreateProductionCost(record)
}

// RecordTransportationCost 校验并写入一条运输费用记录。
func (s *costService) RecordTransportationCost(record *model.TransportationCost) error {
	if record.Amount < 0 {
		return errors.New("运输费用不能为负数")
	}
	if _, err := s.projectRepo.FindByID(record.ProjectID); err != nil {
		return errors.New("关联的项目不存在")
	}
	return s.costRepo.CreateTransportationCost(record)
}

// RecordInstallationCost 校验并写入一条安装费用记录。
func (s *costService) RecordInstallationCost(record *model.InstallationCost) error {
	if record.Amount < 0 {
		return errors.New("安装费用不能为负数")
	}
	if _, err := s.projectRepo.FindByID(record.ProjectID); err != nil {
		return errors.New("关联的项目不存在")
	}
	return s.costRepo.CreateInstallationCost(record)
}

func (s *costService) ListProductionCosts(productID *uint, startDate, endDate *time.Time) ([]model.ProductionCost, error) {
	return s.costRepo.FindProductionCosts(productID, startDate, endDate)
}

func (s *costService) ListTransportationCosts(projectID *uint) ([]model.TransportationCost, error) {
	return s.costRepo.FindTransportationCosts(projectID)
}

func (s *costService) ListInstallationCosts(projectID *uint) ([]model.InstallationCost, error) {
	return s.costRepo.FindInstallationCosts(projectID)
}
