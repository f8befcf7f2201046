package service

import (
	"errors"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
	"costwise-go/pkg/log"

	"gorm.io/gorm"
)

// ProjectService 接口定义了项目相关的业务操作。
type ProjectService interface {
	Create(project *model.Project) error
	Update(project *model.Project) error
	Delete(id uint) error
	Get(id uint) (*model.Project, error)
	List() ([]model.Project, error)
	// CostSummary 汇总单个项目的预估/实际成本与运输、安装费用合计。
	CostSummary(id uint) (*model.ProjectCostSummary, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	costRepo    repository.CostRepository
}

// NewProjectService 创建一个新的 ProjectService 实例。
func NewProjectService(projectRepo repository.ProjectRepository, costRepo repository.CostRepository) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		costRepo:    costRepo,
	}
}

func (s *projectService) Create(project *model.Project) error {
	if project.Name == "" {
		return errors.New("项目名称不能为空")
	}
	if project.Status == "" {
		project.Status = "ACTIVE"
	}
	return s.projectRepo.Create(project)
}

func (s *projectService) Update(project *model.Project) error {
	if _, err := s.projectRepo.FindByID(project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("项目不存在")
		}
		return err
	}
	return s.projectRepo.Update(project)
}

func (s *projectService) Delete(id uint) error {
	return s.projectRepo.Delete(id)
}

func (s *projectService) Get(id uint) (*model.Project, error) {
	return s.projectRepo.FindByID(id)
}

func (s *projectService) List() ([]model.Project, error) {
	return s.projectRepo.FindAll()
}

// CostSummary 汇总项目成本。运输/安装合计查询失败时记为 0 并记录日志，
// 不让统计故障挡住项目基本信息的返回。
func (s *projectService) CostSummary(id uint) (*model.ProjectCostSummary, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	transportationTotal, err := s.costRepo.SumTransportationCost(id)
	if err != nil {
		log.Errorf("[ProjectService] 汇总运输费用失败, projectID: %d, error: %v", id, err)
	}
	installationTotal, err := s.costRepo.SumInstallationCost(id)
	if err != nil {
		log.Errorf("[ProjectService] 汇总安装费用失败, projectID: %d, error: %v", id, err)
	}

	return &model.ProjectCostSummary{
		ProjectID:           project.ID,
		ProjectName:         project.Name,
		EstimatedCost:       project.EstimatedCost,
		ActualCost:          project.ActualCost,
		TransportationTotal: transportationTotal,
		InstallationTotal:   installationTotal,
	}, nil
}
