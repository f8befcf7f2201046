package model

// EsDocument 定义了存储在向量索引（Elasticsearch）中的文档结构。
// 元数据足以在不回查数据库的情况下恢复归属文档与分块文本。
type EsDocument struct {
	VectorID     string    `json:"vector_id"` // 形如 doc_<documentId>_chunk_<chunkIndex>
	DocumentID   uint      `json:"document_id"`
	ChunkIndex   int       `json:"chunk_index"`
	ChunkText    string    `json:"chunk_text"`
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
	ProjectID    *uint     `json:"project_id,omitempty"`
	DocType      string    `json:"doc_type,omitempty"`
	FileName     string    `json:"file_name,omitempty"`
}

// EsHit 表示一次相似度检索的单条命中，按相似度降序排列。
type EsHit struct {
	Source EsDocument `json:"_source"`
	Score  float64    `json:"_score"`
}
