package repository

import (
	"time"

	"costwise-go/internal/model"

	"gorm.io/gorm"
)

// CostStat 是一类成本记录的均值统计，Count 为参与统计的记录数。
type CostStat struct {
	Average float64
	Count   int64
}

// CostRepository 接口定义了三类成本记录的数据持久化与统计操作。
type CostRepository interface {
	CreateProductionCost(record *model.ProductionCost) error
	CreateTransportationCost(record *model.TransportationCost) error
	CreateInstallationCost(record *model.InstallationCost) error

	// FindProductionCosts 按产品与日期范围筛选生产成本记录，过滤条件均可选。
	FindProductionCosts(productID *uint, startDate, endDate *time.Time) ([]model.ProductionCost, error)
	FindTransportationCosts(projectID *uint) ([]model.TransportationCost, error)
	FindInstallationCosts(projectID *uint) ([]model.InstallationCost, error)

	// AvgProductionUnitCost 计算全部历史记录的平均单位生产成本。
	AvgProductionUnitCost() (CostStat, error)
	// AvgTransportationCost 计算指定项目的平均运输费用。
	AvgTransportationCost(projectID uint) (CostStat, error)
	// AvgInstallationCost 计算指定项目的平均安装费用。
	AvgInstallationCost(projectID uint) (CostStat, error)

	SumTransportationCost(projectID uint) (float64, error)
	SumInstallationCost(projectID uint) (float64, error)
}

type costRepository struct {
	db *gorm.DB
}

// NewCostRepository 创建一个新的 CostRepository 实例。
func NewCostRepository(db *gorm.DB) CostRepository {
	return &costRepository{db: db}
}

func (r *costRepository) CreateProductionCost(record *model.ProductionCost) error {
	return r.db.Create(record).Error
}

func (r *costRepository) CreateTransportationCost(record *model.TransportationCost) error {
	return r.db.Create(record).Error
}

func (r *costRepository) CreateInstallationCost(record *model.InstallationCost) error {
	return r.db.Create(record).Error
}

func (r *costRepository) FindProductionCosts(productID *uint, startDate, endDate *time.Time) ([]model.ProductionCost, error) {
	query := r.db.Model(&model.ProductionCost{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if startDate != nil {
		query = query.Where("record_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("record_date <= ?", *endDate)
	}
	var records []model.ProductionCost
	err := query.Order("record_date desc").Find(&records).Error
	return records, err
}

func (r *costRepository) FindTransportationCosts(projectID *uint) ([]model.TransportationCost, error) {
	query := r.db.Model(&model.TransportationCost{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var records []model.TransportationCost
	err := query.Order("record_date desc").Find(&records).Error
	return records, err
}

func (r *costRepository) FindInstallationCosts(projectID *uint) ([]model.InstallationCost, error) {
	query := r.db.Model(&model.InstallationCost{})
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var records []model.InstallationCost
	err := query.Order("record_date desc").Find(&records).Error
	return records, err
}

// avgRow 用于接收 AVG/COUNT 聚合结果，AVG 在空表上为 NULL，因此用指针接收。
type avgRow struct {
	Average *float64
	Count   int64
}

func (row avgRow) stat() CostStat {
	s := CostStat{Count: row.Count}
	if row.Average != nil {
		s.Average = *row.Average
	}
	return s
}

func (r *costRepository) AvgProductionUnitCost() (CostStat, error) {
	var row avgRow
	err := r.db.Model(&model.ProductionCost{}).
		Select("AVG(unit_cost) as average, COUNT(*) as count").
		Scan(&row).Error
	return row.stat(), err
}

func (r *costRepository) AvgTransportationCost(projectID uint) (CostStat, error) {
	var row avgRow
	err := r.db.Model(&model.TransportationCost{}).
		Select("AVG(amount) as average, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Scan(&row).Error
	return row.stat(), err
}

func (r *costRepository) AvgInstallationCost(projectID uint) (CostStat, error) {
	var row avgRow
	err := r.db.Model(&model.InstallationCost{}).
		Select("AVG(amount) as average, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Scan(&row).Error
	return row.stat(), err
}

func (r *costRepository) SumTransportationCost(projectID uint) (float64, error) {
	var total *float64
	err := r.db.Model(&model.TransportationCost{}).
		Select("SUM(amount)").
		Where("project_id = ?", projectID).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *costRepository) SumInstallationCost(projectID uint) (float64, error) {
	var total *float64
	err := r.db.Model(&model.InstallationCost{}).
		Select("SUM(amount)").
		Where("project_id = ?", projectID).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
