package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"costwise-go/internal/model"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/es"
	"costwise-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.fail {
		return nil, embedding.ErrEmbeddingFailed
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.fail {
		return nil, embedding.ErrEmbeddingFailed
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

// stubIndex 记录收到的 topK 并返回预设命中。
type stubIndex struct {
	hits     []model.EsHit
	fail     bool
	lastTopK int
}

func (s *stubIndex) Upsert(ctx context.Context, docs []model.EsDocument) error { return nil }

func (s *stubIndex) Search(ctx context.Context, vector []float32, topK int) ([]model.EsHit, error) {
	s.lastTopK = topK
	if s.fail {
		return nil, errors.New("search exception")
	}
	return s.hits, nil
}

// stubDocRepo 按预设的 id->文件名 映射响应批量查询。
type stubDocRepo struct {
	names map[uint]string
}

func (s *stubDocRepo) Create(doc *model.Document) error          { return nil }
func (s *stubDocRepo) FindByID(id uint) (*model.Document, error) { return nil, errors.New("not found") }
func (s *stubDocRepo) FindAll() ([]model.Document, error)        { return nil, nil }
func (s *stubDocRepo) FindByProjectID(projectID uint) ([]model.Document, error) {
	return nil, nil
}
func (s *stubDocRepo) SetIndexed(id uint, handle string) error { return nil }

func (s *stubDocRepo) FindBatchByIDs(ids []uint) ([]*model.Document, error) {
	var docs []*model.Document
	for _, id := range ids {
		if name, ok := s.names[id]; ok {
			doc := &model.Document{FileName: name}
			doc.ID = id
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// stubContextBuilder 返回固定的成本上下文文本。
type stubContextBuilder struct {
	text string
}

func (s *stubContextBuilder) BuildContext(projectID *uint) string {
	if s.text == "" {
		return NoCostDataText
	}
	return s.text
}

// stubLLM 记录最近一次收到的消息，fail 为 true 时模拟生成故障。
type stubLLM struct {
	answer       string
	fail         bool
	lastMessages []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams) (string, error) {
	s.lastMessages = messages
	if s.fail {
		return "", errors.New("upstream timeout")
	}
	return s.answer, nil
}

func (s *stubLLM) StreamChatMessages(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams, writer llm.MessageWriter) error {
	return errors.New("not implemented")
}

func sampleHits() []model.EsHit {
	return []model.EsHit{
		{Source: model.EsDocument{VectorID: "doc_1_chunk_0", DocumentID: 1, ChunkIndex: 0, ChunkText: "三月钢材采购单价为 4,200 元/吨"}, Score: 0.92},
		{Source: model.EsDocument{VectorID: "doc_2_chunk_3", DocumentID: 2, ChunkIndex: 3, ChunkText: "安装班组工时记录"}, Score: 0.81},
	}
}

func newTestQueryService(embedder *stubEmbedder, index *stubIndex, docRepo *stubDocRepo, chat *stubLLM) QueryService {
	return NewQueryService(embedder, index, docRepo,
		&stubContextBuilder{text: "历史平均单位生产成本: 42.50（基于 12 条记录）"},
		chat, NewBreakdownExtractor())
}

func TestAnswerHappyPath(t *testing.T) {
	index := &stubIndex{hits: sampleHits()}
	docRepo := &stubDocRepo{names: map[uint]string{1: "采购台账.xlsx", 2: "安装日报.pdf"}}
	chat := &stubLLM{answer: "根据 [1]，该批次总计 8,500 元。"}
	svc := newTestQueryService(&stubEmbedder{}, index, docRepo, chat)

	result, err := svc.Answer(context.Background(), "这批设备的总成本是多少？", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "根据 [1]，该批次总计 8,500 元。", result.Answer)

	// 来源与命中顺序一致，文件名来自批量元数据查询
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "采购台账.xlsx", result.Sources[0].FileName)
	assert.Equal(t, 0.92, result.Sources[0].Score)
	assert.Equal(t, "安装日报.pdf", result.Sources[1].FileName)

	// 答案中的金额被提取为结构化拆分
	require.NotNil(t, result.Breakdown)
	require.NotNil(t, result.Breakdown.Total)
	assert.Equal(t, 8500.0, *result.Breakdown.Total)

	// prompt 同时携带编号引用与成本统计
	require.Len(t, chat.lastMessages, 2)
	assert.Equal(t, "system", chat.lastMessages[0].Role)
	assert.Contains(t, chat.lastMessages[1].Content, "[1]")
	assert.Contains(t, chat.lastMessages[1].Content, "历史平均单位生产成本")
	assert.Contains(t, chat.lastMessages[1].Content, "这批设备的总成本是多少？")
}

func TestAnswerGenerationFailureFallsBack(t *testing.T) {
	index := &stubIndex{hits: sampleHits()}
	docRepo := &stubDocRepo{names: map[uint]string{1: "采购台账.xlsx"}}
	svc := newTestQueryService(&stubEmbedder{}, index, docRepo, &stubLLM{fail: true})

	result, err := svc.Answer(context.Background(), "总成本？", nil, 3)
	// 生成失败不是查询失败：固定文案 + 完整来源
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, result.Answer)
	assert.Len(t, result.Sources, 2)
	assert.Nil(t, result.Breakdown)
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	svc := newTestQueryService(&stubEmbedder{fail: true}, &stubIndex{}, &stubDocRepo{}, &stubLLM{})

	result, err := svc.Answer(context.Background(), "总成本？", nil, 3)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestAnswerSearchFailure(t *testing.T) {
	svc := newTestQueryService(&stubEmbedder{}, &stubIndex{fail: true}, &stubDocRepo{}, &stubLLM{})

	result, err := svc.Answer(context.Background(), "总成本？", nil, 3)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestAnswerEmptyQuery(t *testing.T) {
	svc := newTestQueryService(&stubEmbedder{}, &stubIndex{}, &stubDocRepo{}, &stubLLM{})

	for _, query := range []string{"", "   ", "\n\t"} {
		result, err := svc.Answer(context.Background(), query, nil, 3)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestAnswerTopKDefaulting(t *testing.T) {
	index := &stubIndex{}
	svc := newTestQueryService(&stubEmbedder{}, index, &stubDocRepo{}, &stubLLM{answer: "资料不足，无法回答。"})

	_, err := svc.Answer(context.Background(), "总成本？", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, es.DefaultTopK, index.lastTopK)

	_, err = svc.Answer(context.Background(), "总成本？", nil, -2)
	require.NoError(t, err)
	assert.Equal(t, es.DefaultTopK, index.lastTopK)

	_, err = svc.Answer(context.Background(), "总成本？", nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, index.lastTopK)
}

func TestAnswerUnknownDocumentName(t *testing.T) {
	hits := []model.EsHit{
		{Source: model.EsDocument{VectorID: "doc_9_chunk_0", DocumentID: 9, ChunkText: "孤儿分块"}, Score: 0.5},
	}
	svc := newTestQueryService(&stubEmbedder{}, &stubIndex{hits: hits}, &stubDocRepo{}, &stubLLM{answer: "ok"})

	result, err := svc.Answer(context.Background(), "这是什么？", nil, 1)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "未知文件", result.Sources[0].FileName)
}

func TestAnswerLongExcerptTruncated(t *testing.T) {
	long := strings.Repeat("长", 500)
	hits := []model.EsHit{
		{Source: model.EsDocument{VectorID: "doc_1_chunk_0", DocumentID: 1, ChunkText: long, FileName: "报表.pdf"}, Score: 0.7},
	}
	svc := newTestQueryService(&stubEmbedder{}, &stubIndex{hits: hits}, &stubDocRepo{}, &stubLLM{answer: "ok"})

	result, err := svc.Answer(context.Background(), "摘要？", nil, 1)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	excerpt := []rune(result.Sources[0].Excerpt)
	assert.LessOrEqual(t, len(excerpt), excerptMaxRunes+1)
	assert.Equal(t, '…', excerpt[len(excerpt)-1])
}
