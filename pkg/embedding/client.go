// Package embedding 提供了与 Embedding 模型交互的客户端，以及向量相似度工具。
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"costwise-go/internal/config"
	"costwise-go/pkg/log"
)

// ErrEmbeddingFailed 统一包装底层 Embedding 服务的所有失败。
// 调用方只需要知道向量化失败了，不需要知道服务商的具体原因（细节记录在服务端日志）。
var ErrEmbeddingFailed = errors.New("embedding failed")

// ErrDimensionMismatch 表示参与相似度计算的两个向量维度不一致。
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Client 定义了 Embedding 客户端的接口。
type Client interface {
	// Embed 将单条文本向量化。
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch 将一组文本在一次调用中向量化，返回顺序与输入一一对应。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type openAICompatibleClient struct {
	cfg    config.EmbeddingConfig
	client *http.Client
}

// NewClient 创建一个基于 OpenAI 兼容接口的 Embedding 客户端。
func NewClient(cfg config.EmbeddingConfig) Client {
	return &openAICompatibleClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed 调用 Embedding API 获取单条文本的向量。
func (c *openAICompatibleClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch 将整批文本打包为一次 API 调用，避免逐条请求的往返开销。
func (c *openAICompatibleClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrEmbeddingFailed)
	}
	log.Infof("[EmbeddingClient] 开始调用 Embedding API, model: %s, batch: %d", c.cfg.Model, len(texts))

	reqBody := embeddingRequest{
		Model:      c.cfg.Model,
		Input:      texts,
		Dimensions: c.cfg.Dimensions,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		log.Errorf("[EmbeddingClient] 序列化请求失败, error: %v", err)
		return nil, ErrEmbeddingFailed
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/embeddings", bytes.NewReader(reqBytes))
	if err != nil {
		log.Errorf("[EmbeddingClient] 创建请求失败, error: %v", err)
		return nil, ErrEmbeddingFailed
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[EmbeddingClient] 调用 Embedding API 失败, error: %v", err)
		return nil, ErrEmbeddingFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[EmbeddingClient] Embedding API 返回非 200 状态码: %s", resp.Status)
		return nil, ErrEmbeddingFailed
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		log.Errorf("[EmbeddingClient] 解析 Embedding API 响应失败, error: %v", err)
		return nil, ErrEmbeddingFailed
	}

	if len(embeddingResp.Data) != len(texts) {
		log.Errorf("[EmbeddingClient] 返回向量数量 %d 与输入数量 %d 不一致", len(embeddingResp.Data), len(texts))
		return nil, ErrEmbeddingFailed
	}

	vectors := make([][]float32, 0, len(embeddingResp.Data))
	for i, d := range embeddingResp.Data {
		if len(d.Embedding) == 0 {
			log.Errorf("[EmbeddingClient] 第 %d 条返回了空向量", i)
			return nil, ErrEmbeddingFailed
		}
		vectors = append(vectors, d.Embedding)
	}

	log.Infof("[EmbeddingClient] 成功获取 %d 条向量, 维度: %d", len(vectors), len(vectors[0]))
	return vectors, nil
}

// CosineSimilarity 计算两个向量的余弦相似度，取值范围 [-1, 1]。
// 维度不一致时返回 ErrDimensionMismatch；零向量的相似度定义为 0。
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
