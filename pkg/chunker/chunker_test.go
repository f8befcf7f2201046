package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWindows(t *testing.T) {
	chunks := Chunk("a b c d e f g h", 4, 2)
	assert.Equal(t, []string{"a b c d", "c d e f", "e f g h"}, chunks)
}

func TestChunkShortText(t *testing.T) {
	// 短文本应恰好产生一个分块
	chunks := Chunk("只有 一个 分块", 512, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "只有 一个 分块", chunks[0])
}

func TestChunkEmptyText(t *testing.T) {
	assert.Nil(t, Chunk("", 512, 50))
	assert.Nil(t, Chunk("   \n\t  ", 512, 50))
}

func TestChunkOverlapNotSmallerThanSize(t *testing.T) {
	// overlap >= chunkSize 时步长钳制为 1，不允许死循环
	chunks := Chunk("a b c d e", 2, 5)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "a b", chunks[0])
	// 步长为 1：窗口依次前移一个词
	assert.Equal(t, "b c", chunks[1])
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(last, "e"))
}

// 去掉重叠后拼接各分块应还原原始词序列。
func TestChunkReconstruction(t *testing.T) {
	words := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		words = append(words, string(rune('a'+i%26)))
	}
	text := strings.Join(words, " ")

	const size, overlap = 16, 4
	chunks := Chunk(text, size, overlap)
	require.NotEmpty(t, chunks)

	rebuilt := strings.Fields(chunks[0])
	for _, c := range chunks[1:] {
		cw := strings.Fields(c)
		require.GreaterOrEqual(t, len(cw), overlap)
		rebuilt = append(rebuilt, cw[overlap:]...)
	}
	assert.Equal(t, words, rebuilt)
}

func TestNormalize(t *testing.T) {
	in := "  生产成本\t报表\r\n2024 年  \x00数据  "
	assert.Equal(t, "生产成本 报表 2024 年 数据", Normalize(in))
	assert.Equal(t, "", Normalize("\r\n\t"))
}
