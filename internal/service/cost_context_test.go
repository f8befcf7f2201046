package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCostRepo 按字段直接返回预设的统计结果。
type fakeCostRepo struct {
	productionStat     repository.CostStat
	transportationStat repository.CostStat
	installationStat   repository.CostStat
	transportationSum  float64
	installationSum    float64
	err                error
}

func (f *fakeCostRepo) CreateProductionCost(record *model.ProductionCost) error         { return nil }
func (f *fakeCostRepo) CreateTransportationCost(record *model.TransportationCost) error { return nil }
func (f *fakeCostRepo) CreateInstallationCost(record *model.InstallationCost) error     { return nil }

func (f *fakeCostRepo) FindProductionCosts(productID *uint, startDate, endDate *time.Time) ([]model.ProductionCost, error) {
	return nil, nil
}
func (f *fakeCostRepo) FindTransportationCosts(projectID *uint) ([]model.TransportationCost, error) {
	return nil, nil
}
func (f *fakeCostRepo) FindInstallationCosts(projectID *uint) ([]model.InstallationCost, error) {
	return nil, nil
}

func (f *fakeCostRepo) AvgProductionUnitCost() (repository.CostStat, error) {
	return f.productionStat, f.err
}
func (f *fakeCostRepo) AvgTransportationCost(projectID uint) (repository.CostStat, error) {
	return f.transportationStat, f.err
}
func (f *fakeCostRepo) AvgInstallationCost(projectID uint) (repository.CostStat, error) {
	return f.installationStat, f.err
}
func (f *fakeCostRepo) SumTransportationCost(projectID uint) (float64, error) {
	return f.transportationSum, f.err
}
func (f *fakeCostRepo) SumInstallationCost(projectID uint) (float64, error) {
	return f.installationSum, f.err
}

// fakeProjectRepo 只支持 FindByID，其余方法为空实现。
type fakeProjectRepo struct {
	project *model.Project
	err     error
}

func (f *fakeProjectRepo) Create(project *model.Project) error { return nil }
func (f *fakeProjectRepo) Update(project *model.Project) error { return nil }
func (f *fakeProjectRepo) Delete(id uint) error                { return nil }
func (f *fakeProjectRepo) FindAll() ([]model.Project, error)   { return nil, nil }

func (f *fakeProjectRepo) FindByID(id uint) (*model.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.project, nil
}

func TestBuildContextNoData(t *testing.T) {
	builder := NewCostContextBuilder(&fakeCostRepo{}, &fakeProjectRepo{})

	assert.Equal(t, NoCostDataText, builder.BuildContext(nil))
}

func TestBuildContextGlobalAverageOnly(t *testing.T) {
	costRepo := &fakeCostRepo{
		productionStat: repository.CostStat{Average: 42.5, Count: 12},
	}
	builder := NewCostContextBuilder(costRepo, &fakeProjectRepo{})

	text := builder.BuildContext(nil)
	assert.Contains(t, text, "42.50")
	assert.Contains(t, text, "12 条记录")
	assert.NotContains(t, text, NoCostDataText)
}

func TestBuildContextWithProject(t *testing.T) {
	costRepo := &fakeCostRepo{
		productionStat:     repository.CostStat{Average: 42.5, Count: 12},
		transportationStat: repository.CostStat{Average: 800, Count: 3},
		installationStat:   repository.CostStat{Average: 1200, Count: 2},
	}
	projectRepo := &fakeProjectRepo{
		project: &model.Project{Name: "华东产线改造", EstimatedCost: 50000, ActualCost: 48000},
	}
	builder := NewCostContextBuilder(costRepo, projectRepo)

	projectID := uint(5)
	text := builder.BuildContext(&projectID)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, text, "华东产线改造")
	assert.Contains(t, text, "50000.00")
	assert.Contains(t, text, "800.00")
	assert.Contains(t, text, "1200.00")
}

func TestBuildContextProjectStatsOmittedWhenEmpty(t *testing.T) {
	costRepo := &fakeCostRepo{
		productionStat: repository.CostStat{Average: 42.5, Count: 12},
	}
	projectRepo := &fakeProjectRepo{
		project: &model.Project{Name: "样板间", EstimatedCost: 1000, ActualCost: 0},
	}
	builder := NewCostContextBuilder(costRepo, projectRepo)

	projectID := uint(5)
	text := builder.BuildContext(&projectID)
	// Count 为 0 的统计行不出现
	assert.NotContains(t, text, "运输")
	assert.NotContains(t, text, "安装")
	assert.Contains(t, text, "样板间")
}

func TestBuildContextRepositoryErrorTreatedAsNoData(t *testing.T) {
	costRepo := &fakeCostRepo{err: errors.New("connection refused")}
	builder := NewCostContextBuilder(costRepo, &fakeProjectRepo{err: errors.New("connection refused")})

	projectID := uint(9)
	assert.Equal(t, NoCostDataText, builder.BuildContext(&projectID))
}
