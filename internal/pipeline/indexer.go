// Package pipeline 实现了文档索引的核心流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
	"costwise-go/pkg/chunker"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/es"
	"costwise-go/pkg/log"
)

// ErrIndexingFailed 统一包装索引管线中不可恢复的失败。
// 底层细节记录在服务端日志，不向调用方透出。
var ErrIndexingFailed = errors.New("document indexing failed")

// Metadata 是调用方随文档附带的索引元数据。
type Metadata struct {
	ProjectID *uint
	DocType   string
	FileName  string
}

// Indexer 将原始文档文本转换为可检索的向量分块。
// 所有协作方均通过构造函数注入，无包级状态。
type Indexer struct {
	embeddingClient embedding.Client
	index           es.Index
	chunkRepo       repository.ChunkRepository
	docRepo         repository.DocumentRepository
	modelVersion    string
	chunkSize       int
	chunkOverlap    int
}

// NewIndexer 创建一个新的 Indexer 实例。
func NewIndexer(
	embeddingClient embedding.Client,
	index es.Index,
	chunkRepo repository.ChunkRepository,
	docRepo repository.DocumentRepository,
	modelVersion string,
	chunkSize, chunkOverlap int,
) *Indexer {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	return &Indexer{
		embeddingClient: embeddingClient,
		index:           index,
		chunkRepo:       chunkRepo,
		docRepo:         docRepo,
		modelVersion:    modelVersion,
		chunkSize:       chunkSize,
		chunkOverlap:    chunkOverlap,
	}
}

// VectorKey 返回分块在向量索引中的确定性主键。
// 同一文档重复索引会覆盖同名条目（last-write-wins），因此整个流程可安全重跑。
func VectorKey(documentID uint, chunkIndex int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, chunkIndex)
}

// IndexDocument 让一篇文档变得可检索。
// 流程：清洗并切块 -> 一次批量向量化 -> 批量写入向量索引 -> 重建分块记录 ->
// 标记文档已索引。向量写入与后续的元数据写入不在一个事务里，
// 中途失败可能留下部分状态；恢复方式是整体重跑（按 key 覆盖 + 按文档重建分块行）。
func (idx *Indexer) IndexDocument(ctx context.Context, documentID uint, text string, meta Metadata) error {
	log.Infof("[Indexer] 开始索引文档, documentID: %d, fileName: %s", documentID, meta.FileName)

	// 1. 清洗并切块
	chunks := chunker.Chunk(chunker.Normalize(text), idx.chunkSize, idx.chunkOverlap)
	if len(chunks) == 0 {
		log.Warnf("[Indexer] 文档内容为空，无法索引, documentID: %d", documentID)
		return fmt.Errorf("%w: document %d has no indexable content", ErrIndexingFailed, documentID)
	}
	log.Infof("[Indexer] 步骤1: 文本切块完成, 共 %d 个分块 (chunkSize=%d, overlap=%d)", len(chunks), idx.chunkSize, idx.chunkOverlap)

	// 2. 一次批量向量化，避免逐块请求的往返开销
	vectors, err := idx.embeddingClient.EmbedBatch(ctx, chunks)
	if err != nil {
		log.Errorf("[Indexer] 步骤2: 批量向量化失败, documentID: %d, error: %v", documentID, err)
		return fmt.Errorf("%w: embedding", ErrIndexingFailed)
	}
	log.Infof("[Indexer] 步骤2: 批量向量化成功, 维度: %d", len(vectors[0]))

	// 3. 组装向量索引条目，元数据足以免回查地恢复归属文档与分块文本
	esDocs := make([]model.EsDocument, 0, len(chunks))
	for i, chunk := range chunks {
		esDocs = append(esDocs, model.EsDocument{
			VectorID:     VectorKey(documentID, i),
			DocumentID:   documentID,
			ChunkIndex:   i,
			ChunkText:    chunk,
			Vector:       vectors[i],
			ModelVersion: idx.modelVersion,
			ProjectID:    meta.ProjectID,
			DocType:      meta.DocType,
			FileName:     meta.FileName,
		})
	}

	// 4. 一次批量写入向量索引，重复 key 为覆盖语义
	if err := idx.index.Upsert(ctx, esDocs); err != nil {
		log.Errorf("[Indexer] 步骤3: 写入向量索引失败, documentID: %d, error: %v", documentID, err)
		return fmt.Errorf("%w: vector upsert", ErrIndexingFailed)
	}
	log.Infof("[Indexer] 步骤3: 已写入 %d 条向量", len(esDocs))

	// 5. 重建分块记录：先清理旧记录再批量插入，保证重复索引不会累计膨胀
	if err := idx.chunkRepo.DeleteByDocumentID(documentID); err != nil {
		log.Errorf("[Indexer] 步骤4: 清理旧分块记录失败, documentID: %d, error: %v", documentID, err)
		return fmt.Errorf("%w: chunk cleanup", ErrIndexingFailed)
	}
	chunkRows := make([]*model.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		chunkRows = append(chunkRows, &model.DocumentChunk{
			DocumentID: documentID,
			ChunkIndex: i,
			ChunkText:  chunk,
			VectorID:   VectorKey(documentID, i),
		})
	}
	if err := idx.chunkRepo.BatchCreate(chunkRows); err != nil {
		log.Errorf("[Indexer] 步骤4: 批量保存分块记录失败, documentID: %d, error: %v", documentID, err)
		return fmt.Errorf("%w: chunk records", ErrIndexingFailed)
	}
	log.Infof("[Indexer] 步骤4: 已保存 %d 条分块记录", len(chunkRows))

	// 6. 标记文档已索引
	handle := fmt.Sprintf("doc_%d", documentID)
	if err := idx.docRepo.SetIndexed(documentID, handle); err != nil {
		log.Errorf("[Indexer] 步骤5: 更新文档索引状态失败, documentID: %d, error: %v", documentID, err)
		return fmt.Errorf("%w: document flag", ErrIndexingFailed)
	}

	log.Infof("[Indexer] 文档索引完成, documentID: %d, 分块数: %d", documentID, len(chunks))
	return nil
}
