package repository

import (
	"costwise-go/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository 接口定义了文档元数据的数据持久化操作。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByID(id uint) (*model.Document, error)
	FindBatchByIDs(ids []uint) ([]*model.Document, error)
	FindAll() ([]model.Document, error)
	FindByProjectID(projectID uint) ([]model.Document, error)
	// SetIndexed 标记文档已完成索引并记录索引句柄，由索引管线在成功后调用一次。
	SetIndexed(id uint, handle string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) FindByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindBatchByIDs 批量查找文档，用于一次性解析检索命中的文件名。
func (r *documentRepository) FindBatchByIDs(ids []uint) ([]*model.Document, error) {
	var docs []*model.Document
	if len(ids) == 0 {
		return docs, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

func (r *documentRepository) FindAll() ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Order("uploaded_at desc").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) FindByProjectID(projectID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Where("project_id = ?", projectID).Order("uploaded_at desc").Find(&docs).Error
	return docs, err
}

func (r *documentRepository) SetIndexed(id uint, handle string) error {
	return r.db.Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"indexed": true, "index_handle": handle}).Error
}
