// Package chunker 将长文本切分为带重叠的定长词窗口，作为向量化与检索的基本单元。
package chunker

import (
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize 是每个分块包含的词数。
	DefaultChunkSize = 512
	// DefaultOverlap 是相邻分块之间重叠的词数。
	DefaultOverlap = 50
)

// Chunk 按空白将 text 切分为词序列，再以 chunkSize 个词为窗口、
// chunkSize-overlap 为步长滑动切块。相邻分块间的重叠是有意为之，
// 用于降低边界处的上下文丢失。
// 当 overlap >= chunkSize 时步长会被钳制为 1 而不是报错，以兼容把 overlap 调大的调用方。
func Chunk(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := chunkSize - overlap
	if step < 1 {
		// overlap >= chunkSize：步长钳制为 1
		step = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Normalize 清理原始文本：去除控制字符、折叠连续空白为单个空格并去掉首尾空白。
// 索引前由调用方按需执行。
func Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			// 控制字符替换为空格，由后续折叠统一处理
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(cleaned), " ")
}
