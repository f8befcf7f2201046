package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"costwise-go/internal/model"
	"costwise-go/internal/repository"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/es"
	"costwise-go/pkg/llm"
	"costwise-go/pkg/log"
)

// ErrQueryFailed 统一包装查询管线中不可恢复的失败（向量化或检索），
// 底层细节记录在服务端日志，不向调用方透出。
var ErrQueryFailed = errors.New("query failed")

// ErrEmptyQuery 表示调用方没有提供查询文本。
var ErrEmptyQuery = errors.New("query text is required")

// FallbackAnswer 是生成失败时返回给用户的固定文案。
// 检索成功而仅生成失败时，结果仍然可用（来源列表照常返回），因此不作为错误上抛。
const FallbackAnswer = "抱歉，本次未能生成回答，请参考下方的检索来源。"

// systemPrompt 是查询管线使用的固定指令人设。
const systemPrompt = `你是一家制造企业的成本分析助手。请基于提供的参考资料与成本统计回答用户问题：
1. 金额一律使用人民币格式（如 ¥8,500.00）；
2. 回答中引用参考资料时标注其编号（如 [1]）；
3. 如果资料不足以回答问题，必须明确说明，不要编造数据；
4. 如能给出成本拆分，请按 材料(material)、人工(labor)、制造费用(overhead)、总计(total) 分项列出。`

// 查询管线的生成参数：有限的输出长度与适中的采样温度。
var (
	queryTemperature = 0.3
	queryMaxTokens   = 1024
)

// excerptMaxRunes 是来源摘录的最大长度。
const excerptMaxRunes = 200

// QueryService 定义了自然语言成本查询的接口。
type QueryService interface {
	// Answer 回答一个自然语言查询。projectID 非空时成本上下文按该项目聚焦，
	// topK <= 0 时使用默认值。
	Answer(ctx context.Context, query string, projectID *uint, topK int) (*model.QueryResult, error)
}

type queryService struct {
	embeddingClient embedding.Client
	index           es.Index
	docRepo         repository.DocumentRepository
	contextBuilder  ContextBuilder
	llmClient       llm.Client
	extractor       BreakdownExtractor
}

// NewQueryService 创建一个新的 QueryService 实例。
func NewQueryService(
	embeddingClient embedding.Client,
	index es.Index,
	docRepo repository.DocumentRepository,
	contextBuilder ContextBuilder,
	llmClient llm.Client,
	extractor BreakdownExtractor,
) QueryService {
	return &queryService{
		embeddingClient: embeddingClient,
		index:           index,
		docRepo:         docRepo,
		contextBuilder:  contextBuilder,
		llmClient:       llmClient,
		extractor:       extractor,
	}
}

// Answer 协调整个检索增强的问答流程。
func (s *queryService) Answer(ctx context.Context, query string, projectID *uint, topK int) (*model.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = es.DefaultTopK
	}
	log.Infof("[QueryService] 收到查询, query: '%s', topK: %d", query, topK)

	// 1. 向量化查询
	queryVector, err := s.embeddingClient.Embed(ctx, query)
	if err != nil {
		log.Errorf("[QueryService] 步骤1: 查询向量化失败: %v", err)
		return nil, fmt.Errorf("%w: embedding", ErrQueryFailed)
	}

	// 2. top-K 相似度检索
	hits, err := s.index.Search(ctx, queryVector, topK)
	if err != nil {
		log.Errorf("[QueryService] 步骤2: 向量检索失败: %v", err)
		return nil, fmt.Errorf("%w: retrieval", ErrQueryFailed)
	}
	log.Infof("[QueryService] 步骤2: 检索命中 %d 条", len(hits))

	// 3. 解析来源文件名，保持索引返回的相似度排序
	sources := s.resolveSources(hits)

	// 4. 组装成本上下文
	costContext := s.contextBuilder.BuildContext(projectID)

	// 5. 单次生成调用
	answer := s.generate(ctx, query, hits, costContext)

	// 6. 尽力提取结构化成本拆分
	result := &model.QueryResult{
		Answer:    answer,
		Sources:   sources,
		Breakdown: s.extractor.Extract(answer),
	}
	log.Infof("[QueryService] 查询处理完成, 来源数: %d, 提取到拆分: %v", len(sources), result.Breakdown != nil)
	return result, nil
}

// resolveSources 批量解析命中分块的归属文档文件名。
// 解析失败只影响展示名，不影响查询结果。
func (s *queryService) resolveSources(hits []model.EsHit) []model.QuerySource {
	ids := make([]uint, 0, len(hits))
	seen := make(map[uint]struct{})
	for _, hit := range hits {
		if _, ok := seen[hit.Source.DocumentID]; !ok {
			seen[hit.Source.DocumentID] = struct{}{}
			ids = append(ids, hit.Source.DocumentID)
		}
	}

	nameByID := make(map[uint]string)
	docs, err := s.docRepo.FindBatchByIDs(ids)
	if err != nil {
		log.Errorf("[QueryService] 批量查询文档信息失败: %v", err)
	} else {
		for _, doc := range docs {
			nameByID[doc.ID] = doc.FileName
		}
	}

	sources := make([]model.QuerySource, 0, len(hits))
	for _, hit := range hits {
		fileName := nameByID[hit.Source.DocumentID]
		if fileName == "" {
			// 元数据里带了文件名时优先兜底
			fileName = hit.Source.FileName
		}
		if fileName == "" {
			fileName = "未知文件"
		}
		sources = append(sources, model.QuerySource{
			FileName: fileName,
			Score:    hit.Score,
			Excerpt:  truncateRunes(hit.Source.ChunkText, excerptMaxRunes),
		})
	}
	return sources
}

// generate 发起一次生成调用。生成失败被吞掉并转换为固定文案，
// 不让一个故障的生成模型把成功的检索变成硬失败。
func (s *queryService) generate(ctx context.Context, query string, hits []model.EsHit, costContext string) string {
	grounding := buildGroundingBlock(hits)

	var user strings.Builder
	user.WriteString("参考资料：\n")
	user.WriteString(grounding)
	user.WriteString("\n成本统计：\n")
	user.WriteString(costContext)
	user.WriteString("\n\n用户问题：")
	user.WriteString(query)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user.String()},
	}
	gen := &llm.GenerationParams{
		Temperature: &queryTemperature,
		MaxTokens:   &queryMaxTokens,
	}

	answer, err := s.llmClient.Chat(ctx, messages, gen)
	if err != nil {
		log.Errorf("[QueryService] 生成调用失败（已降级为固定文案）: %v", err)
		return FallbackAnswer
	}
	return answer
}

// buildGroundingBlock 将命中分块拼接为带编号的引用段。
func buildGroundingBlock(hits []model.EsHit) string {
	if len(hits) == 0 {
		return "（本轮无检索结果）"
	}
	var b strings.Builder
	for i, hit := range hits {
		label := hit.Source.FileName
		if label == "" {
			label = "unknown"
		}
		b.WriteString(fmt.Sprintf("[%d] (%s) %s\n", i+1, label, hit.Source.ChunkText))
	}
	return b.String()
}

// truncateRunes 按 rune 截断文本，超长时追加省略号。
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
