package repository

import (
	"costwise-go/internal/model"

	"gorm.io/gorm"
)

// ProjectRepository 接口定义了项目相关的数据持久化操作。
type ProjectRepository interface {
	Create(project *model.Project) error
	Update(project *model.Project) error
	Delete(id uint) error
	FindByID(id uint) (*model.Project, error)
	FindAll() ([]model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建一个新的 ProjectRepository 实例。
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

func (r *projectRepository) Update(project *model.Project) error {
	return r.db.Save(project).Error
}

func (r *projectRepository) Delete(id uint) error {
	return r.db.Delete(&model.Project{}, id).Error
}

func (r *projectRepository) FindByID(id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindAll() ([]model.Project, error) {
	var projects []model.Project
	err := r.db.Order("id asc").Find(&projects).Error
	return projects, err
}
