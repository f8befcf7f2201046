// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// DocumentIndexingTask 表示一个文档索引任务的载荷。
// 消费端根据 ObjectName 从对象存储取回文件，提取文本后交给索引管线。
type DocumentIndexingTask struct {
	DocumentID  uint   `json:"document_id"`
	ObjectName  string `json:"object_name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	ProjectID   *uint  `json:"project_id,omitempty"`
}
