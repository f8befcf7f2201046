package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"costwise-go/internal/model"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Init("error", "console", "")
}

// fakeEmbedder 为每条文本返回确定性向量；failAll 为 true 时模拟服务商故障。
type fakeEmbedder struct {
	failAll bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failAll {
		return nil, embedding.ErrEmbeddingFailed
	}
	vectors := make([][]float32, 0, len(texts))
	for i := range texts {
		vectors = append(vectors, []float32{float32(i), float32(len(texts[i]))})
	}
	return vectors, nil
}

// fakeIndex 以 map 模拟覆盖写语义的向量索引。
type fakeIndex struct {
	entries map[string]model.EsDocument
	upserts int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]model.EsDocument)}
}

func (f *fakeIndex) Upsert(ctx context.Context, docs []model.EsDocument) error {
	f.upserts++
	for _, d := range docs {
		f.entries[d.VectorID] = d
	}
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int) ([]model.EsHit, error) {
	return nil, nil
}

// fakeChunkRepo 在内存中模拟分块表。
type fakeChunkRepo struct {
	rows    []*model.DocumentChunk
	deletes int
}

func (f *fakeChunkRepo) BatchCreate(chunks []*model.DocumentChunk) error {
	f.rows = append(f.rows, chunks...)
	return nil
}

func (f *fakeChunkRepo) FindByDocumentID(documentID uint) ([]*model.DocumentChunk, error) {
	var out []*model.DocumentChunk
	for _, c := range f.rows {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) DeleteByDocumentID(documentID uint) error {
	f.deletes++
	kept := f.rows[:0]
	for _, c := range f.rows {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.rows = kept
	return nil
}

// fakeDocRepo 只记录 SetIndexed 调用。
type fakeDocRepo struct {
	indexed map[uint]string
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{indexed: make(map[uint]string)}
}

func (f *fakeDocRepo) Create(doc *model.Document) error                      { return nil }
func (f *fakeDocRepo) FindByID(id uint) (*model.Document, error)             { return nil, errors.New("not found") }
func (f *fakeDocRepo) FindBatchByIDs(ids []uint) ([]*model.Document, error)  { return nil, nil }
func (f *fakeDocRepo) FindAll() ([]model.Document, error)                    { return nil, nil }
func (f *fakeDocRepo) FindByProjectID(projectID uint) ([]model.Document, error) { return nil, nil }

func (f *fakeDocRepo) SetIndexed(id uint, handle string) error {
	f.indexed[id] = handle
	return nil
}

func newTestIndexer(embedder *fakeEmbedder, index *fakeIndex, chunkRepo *fakeChunkRepo, docRepo *fakeDocRepo) *Indexer {
	// chunkSize=4, overlap=2：8 个词恰好产生 3 个分块
	return NewIndexer(embedder, index, chunkRepo, docRepo, "test-embed-v1", 4, 2)
}

func TestIndexDocumentCreatesChunksAndVectors(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	chunkRepo := &fakeChunkRepo{}
	docRepo := newFakeDocRepo()
	idx := newTestIndexer(embedder, index, chunkRepo, docRepo)

	err := idx.IndexDocument(context.Background(), 7, "a b c d e f g h", Metadata{FileName: "成本报表.pdf"})
	require.NoError(t, err)

	// 向量条目：doc_7_chunk_0..2
	require.Len(t, index.entries, 3)
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("doc_7_chunk_%d", i)
		entry, ok := index.entries[key]
		require.True(t, ok, "missing vector entry %s", key)
		assert.Equal(t, uint(7), entry.DocumentID)
		assert.Equal(t, i, entry.ChunkIndex)
		assert.Equal(t, "成本报表.pdf", entry.FileName)
		assert.NotEmpty(t, entry.ChunkText)
	}

	// 分块记录：chunk_index 连续 0..2，与向量条目一一对应
	rows, err := chunkRepo.FindByDocumentID(7)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i, row.ChunkIndex)
		assert.Equal(t, fmt.Sprintf("doc_7_chunk_%d", i), row.VectorID)
		assert.Equal(t, index.entries[row.VectorID].ChunkText, row.ChunkText)
	}

	// 整批只调用一次向量化与一次批量写入
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, index.upserts)

	// 文档被标记为已索引
	assert.Equal(t, "doc_7", docRepo.indexed[7])
}

func TestIndexDocumentReindexOverwrites(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	chunkRepo := &fakeChunkRepo{}
	docRepo := newFakeDocRepo()
	idx := newTestIndexer(embedder, index, chunkRepo, docRepo)

	require.NoError(t, idx.IndexDocument(context.Background(), 7, "a b c d e f g h", Metadata{}))
	require.NoError(t, idx.IndexDocument(context.Background(), 7, "a b c d e f g h", Metadata{}))

	// 向量按 key 覆盖，分块记录先删后插：两次索引后均不膨胀
	assert.Len(t, index.entries, 3)
	rows, err := chunkRepo.FindByDocumentID(7)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 2, chunkRepo.deletes)
}

func TestIndexDocumentEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{failAll: true}
	index := newFakeIndex()
	chunkRepo := &fakeChunkRepo{}
	docRepo := newFakeDocRepo()
	idx := newTestIndexer(embedder, index, chunkRepo, docRepo)

	err := idx.IndexDocument(context.Background(), 9, "some document text", Metadata{})
	assert.ErrorIs(t, err, ErrIndexingFailed)
	// 任何失败都不应把文档标记为已索引
	assert.Empty(t, docRepo.indexed)
	assert.Empty(t, index.entries)
}

func TestIndexDocumentEmptyText(t *testing.T) {
	idx := newTestIndexer(&fakeEmbedder{}, newFakeIndex(), &fakeChunkRepo{}, newFakeDocRepo())
	err := idx.IndexDocument(context.Background(), 3, "   \n\t ", Metadata{})
	assert.ErrorIs(t, err, ErrIndexingFailed)
}
