package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"costwise-go/internal/config"
	"costwise-go/pkg/log"
	"costwise-go/pkg/storage"
	"costwise-go/pkg/tasks"
	"costwise-go/pkg/tika"
	"unicode/utf8"
)

// Processor 消费 Kafka 索引任务：从对象存储取回文件、提取文本并交给 Indexer。
type Processor struct {
	tikaClient *tika.Client
	minioCfg   config.MinIOConfig
	indexer    *Indexer
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(tikaClient *tika.Client, minioCfg config.MinIOConfig, indexer *Indexer) *Processor {
	return &Processor{
		tikaClient: tikaClient,
		minioCfg:   minioCfg,
		indexer:    indexer,
	}
}

// Process 是索引任务的入口，满足 kafka.TaskProcessor 接口。
func (p *Processor) Process(ctx context.Context, task tasks.DocumentIndexingTask) error {
	log.Infof("[Processor] 开始处理索引任务, documentID: %d, object: %s", task.DocumentID, task.ObjectName)

	// 1. 从 MinIO 下载文件
	object, err := storage.GetObject(ctx, p.minioCfg.BucketName, task.ObjectName)
	if err != nil {
		log.Errorf("[Processor] 从MinIO下载文件失败, object: %s, error: %v", task.ObjectName, err)
		return fmt.Errorf("从 MinIO 下载文件失败: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(object)
	if err != nil {
		log.Errorf("[Processor] 读取MinIO对象流失败, error: %v", err)
		return fmt.Errorf("读取MinIO对象流失败: %w", err)
	}
	if size == 0 {
		log.Warnf("[Processor] 文件 '%s' 内容为空, 处理中止", task.FileName)
		return errors.New("文件内容为空")
	}
	log.Infof("[Processor] 步骤1: 文件下载成功, 大小: %d 字节", size)

	// 2. 使用 Tika 提取文本
	textContent, err := p.tikaClient.ExtractText(bytes.NewReader(buf.Bytes()), task.FileName)
	if err != nil {
		log.Errorf("[Processor] 使用Tika提取文本失败, fileName: %s, error: %v", task.FileName, err)
		return fmt.Errorf("使用 Tika 提取文本失败: %w", err)
	}
	if textContent == "" {
		log.Warnf("[Processor] Tika提取的文本内容为空, 处理中止, fileName: %s", task.FileName)
		return errors.New("提取的文本内容为空")
	}
	log.Infof("[Processor] 步骤2: 文本提取成功, 内容长度: %d 字符", utf8.RuneCountInString(textContent))

	// 3. 交给索引管线
	return p.indexer.IndexDocument(ctx, task.DocumentID, textContent, Metadata{
		ProjectID: task.ProjectID,
		DocType:   task.ContentType,
		FileName:  task.FileName,
	})
}
