package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"costwise-go/internal/config"
	"costwise-go/internal/model"
	"costwise-go/internal/repository"
	"costwise-go/pkg/kafka"
	"costwise-go/pkg/log"
	"costwise-go/pkg/storage"
	"costwise-go/pkg/tasks"
	"costwise-go/pkg/token"
)

// maxUploadSize 是单个文档的大小上限（50MB）。
const maxUploadSize = 50 << 20

// presignedURLExpiry 是下载链接的有效期。
const presignedURLExpiry = 15 * time.Minute

// DocumentService 接口定义了文档上传、索引与查阅的业务操作。
type DocumentService interface {
	// Upload 将文档写入对象存储、登记元数据并投递异步索引任务。
	Upload(ctx context.Context, reader io.Reader, fileName, contentType string, fileSize int64, projectID *uint) (*model.Document, error)
	Get(id uint) (*model.Document, error)
	List(projectID *uint) ([]model.Document, error)
	// Reindex 为已存在的文档重新投递一个索引任务。
	Reindex(id uint) error
	// DownloadURL 生成文档的预签名下载链接。
	DownloadURL(id uint) (string, error)
}

type documentService struct {
	docRepo  repository.DocumentRepository
	minioCfg config.MinIOConfig
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(docRepo repository.DocumentRepository, minioCfg config.MinIOConfig) DocumentService {
	return &documentService{
		docRepo:  docRepo,
		minioCfg: minioCfg,
	}
}

// Upload 处理文档上传：对象存储在前、元数据其次、索引任务最后。
// 任务投递失败不回滚上传，文档仍可通过 Reindex 重新触发索引。
func (s *documentService) Upload(ctx context.Context, reader io.Reader, fileName, contentType string, fileSize int64, projectID *uint) (*model.Document, error) {
	if fileName == "" {
		return nil, errors.New("文件名不能为空")
	}
	if fileSize <= 0 {
		return nil, errors.New("文件内容为空")
	}
	if fileSize > maxUploadSize {
		return nil, errors.New("文件大小超出限制")
	}

	// 1. 写入对象存储，对象名带随机前缀避免同名覆盖
	objectName := fmt.Sprintf("documents/%s%s", token.GenerateRandomString(16), filepath.Ext(fileName))
	if err := storage.PutObject(ctx, s.minioCfg.BucketName, objectName, reader, fileSize, contentType); err != nil {
		log.Errorf("[DocumentService] 上传文件到MinIO失败, fileName: %s, error: %v", fileName, err)
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}
	log.Infof("[DocumentService] 步骤1: 文件上传成功, object: %s", objectName)

	// 2. 登记文档元数据
	doc := &model.Document{
		ProjectID:   projectID,
		FileName:    fileName,
		StoragePath: objectName,
		ContentType: contentType,
		FileSize:    fileSize,
	}
	if err := s.docRepo.Create(doc); err != nil {
		log.Errorf("[DocumentService] 保存文档元数据失败, fileName: %s, error: %v", fileName, err)
		return nil, fmt.Errorf("保存文档元数据失败: %w", err)
	}
	log.Infof("[DocumentService] 步骤2: 文档元数据已登记, documentID: %d", doc.ID)

	// 3. 投递异步索引任务
	if err := s.produceTask(doc); err != nil {
		log.Errorf("[DocumentService] 投递索引任务失败, documentID: %d, error: %v", doc.ID, err)
	} else {
		log.Infof("[DocumentService] 步骤3: 索引任务已投递, documentID: %d", doc.ID)
	}

	return doc, nil
}

func (s *documentService) Get(id uint) (*model.Document, error) {
	return s.docRepo.FindByID(id)
}

func (s *documentService) List(projectID *uint) ([]model.Document, error) {
	if projectID != nil {
		return s.docRepo.FindByProjectID(*projectID)
	}
	return s.docRepo.FindAll()
}

// Reindex 重新投递索引任务。重复索引是幂等的：向量按 key 覆盖，分块记录先删后插。
func (s *documentService) Reindex(id uint) error {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.produceTask(doc); err != nil {
		return fmt.Errorf("投递索引任务失败: %w", err)
	}
	log.Infof("[DocumentService] 重新索引任务已投递, documentID: %d", id)
	return nil
}

func (s *documentService) DownloadURL(id uint) (string, error) {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		return "", err
	}
	return storage.GetPresignedURL(s.minioCfg.BucketName, doc.StoragePath, presignedURLExpiry)
}

func (s *documentService) produceTask(doc *model.Document) error {
	return kafka.ProduceIndexingTask(tasks.DocumentIndexingTask{
		DocumentID:  doc.ID,
		ObjectName:  doc.StoragePath,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		ProjectID:   doc.ProjectID,
	})
}
