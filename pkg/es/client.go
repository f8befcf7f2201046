// Package es 提供了基于 Elasticsearch 的向量索引适配器。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"costwise-go/internal/config"
	"costwise-go/internal/model"
	"costwise-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DefaultTopK 是检索未指定 topK 时的默认返回条数。
const DefaultTopK = 5

// Index 定义了向量索引的操作接口。
type Index interface {
	// Upsert 将一批 (key, vector, metadata) 条目写入索引。
	// 以 VectorID 作为文档 _id，重复写入同一 key 为覆盖语义（last-write-wins）。
	Upsert(ctx context.Context, docs []model.EsDocument) error
	// Search 以余弦相似度执行 top-K 最近邻检索，结果按相似度降序排列。
	// topK <= 0 时使用 DefaultTopK。
	Search(ctx context.Context, vector []float32, topK int) ([]model.EsHit, error)
}

type client struct {
	es        *elasticsearch.Client
	indexName string
}

// New 创建向量索引客户端并确保索引存在。dims 为部署固定的向量维度。
func New(cfg config.ElasticsearchConfig, dims int) (Index, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Addresses},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}

	c := &client{es: esClient, indexName: cfg.IndexName}
	if err := c.ensureIndex(dims); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureIndex 检查索引是否存在，不存在则按余弦相似度的 dense_vector 映射创建。
func (c *client) ensureIndex(dims int) error {
	res, err := c.es.Indices.Exists([]string{c.indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", c.indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"vector_id": { "type": "keyword" },
				"document_id": { "type": "long" },
				"chunk_index": { "type": "integer" },
				"chunk_text": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" },
				"project_id": { "type": "long" },
				"doc_type": { "type": "keyword" },
				"file_name": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", c.indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", c.indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功 (dims=%d)", c.indexName, dims)
	return nil
}

// Upsert 以一次 Bulk 请求批量写入，_id 即 VectorID。
func (c *client) Upsert(ctx context.Context, docs []model.EsDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		meta := map[string]map[string]string{
			"index": {"_index": c.indexName, "_id": doc.VectorID},
		}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		docBytes, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		buf.Write(metaBytes)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Body:    bytes.NewReader(buf.Bytes()),
		Refresh: "true",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("批量写入向量索引出错: %s", res.String())
		return errors.New("failed to bulk index documents")
	}

	// Bulk 接口整体 200 时单条仍可能失败，需检查 errors 标志
	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		log.Errorf("批量写入向量索引存在失败条目, index: %s", c.indexName)
		return errors.New("bulk indexing reported item failures")
	}
	return nil
}

// Search 执行纯 kNN 检索。
func (c *client) Search(ctx context.Context, vector []float32, topK int) ([]model.EsHit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"size": topK,
		"_source": map[string]interface{}{
			"excludes": []string{"vector"},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 检索返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []model.EsHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	return esResponse.Hits.Hits, nil
}
