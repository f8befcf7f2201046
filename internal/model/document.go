package model

import "time"

// Document 对应于数据库中的 'documents' 表。
// Indexed 与 IndexHandle 在索引管线成功完成后被更新且仅更新一次。
type Document struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   *uint     `gorm:"index" json:"projectId"` // 可选的项目归属
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	StoragePath string    `gorm:"type:varchar(255);not null" json:"storagePath"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	FileSize    int64     `gorm:"not null" json:"fileSize"`
	Indexed     bool      `gorm:"not null;default:false" json:"indexed"`
	IndexHandle string    `gorm:"type:varchar(100)" json:"indexHandle"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}

// DocumentChunk 对应于 'document_chunks' 表，记录文档切分后的每个分块。
// 分块记录只由索引管线创建，创建后不可变；ChunkIndex 在同一文档内从 0 开始连续。
type DocumentChunk struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint   `gorm:"index;not null" json:"documentId"`
	ChunkIndex int    `gorm:"not null" json:"chunkIndex"`
	ChunkText  string `gorm:"type:text" json:"chunkText"`
	VectorID   string `gorm:"type:varchar(100);not null" json:"vectorId"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentChunk) TableName() string {
	return "document_chunks"
}
