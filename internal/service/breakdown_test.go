package service

import (
	"testing"

	"costwise-go/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Init("error", "console", "")
}

func TestExtractTotalOnly(t *testing.T) {
	extractor := NewBreakdownExtractor()

	breakdown := extractor.Extract("the total: 8,500")
	require.NotNil(t, breakdown)
	require.NotNil(t, breakdown.Total)
	assert.Equal(t, 8500.0, *breakdown.Total)
	assert.Nil(t, breakdown.Material)
	assert.Nil(t, breakdown.Labor)
	assert.Nil(t, breakdown.Overhead)
}

func TestExtractFullBreakdown(t *testing.T) {
	extractor := NewBreakdownExtractor()
	answer := `根据参考资料 [1]，该批次的成本拆分如下：
- Material: ¥5,200.50
- Labor: ¥2,100
- Overhead: ¥1,199.50
- Total: ¥8,500.00`

	breakdown := extractor.Extract(answer)
	require.NotNil(t, breakdown)
	require.NotNil(t, breakdown.Material)
	require.NotNil(t, breakdown.Labor)
	require.NotNil(t, breakdown.Overhead)
	require.NotNil(t, breakdown.Total)
	assert.Equal(t, 5200.50, *breakdown.Material)
	assert.Equal(t, 2100.0, *breakdown.Labor)
	assert.Equal(t, 1199.50, *breakdown.Overhead)
	assert.Equal(t, 8500.0, *breakdown.Total)
}

func TestExtractChineseLabels(t *testing.T) {
	extractor := NewBreakdownExtractor()
	answer := "材料成本为 3,000 元，人工费用 1,500 元，制造费用 500 元，总计 5,000 元。"

	breakdown := extractor.Extract(answer)
	require.NotNil(t, breakdown)
	require.NotNil(t, breakdown.Material)
	require.NotNil(t, breakdown.Labor)
	require.NotNil(t, breakdown.Overhead)
	require.NotNil(t, breakdown.Total)
	assert.Equal(t, 3000.0, *breakdown.Material)
	assert.Equal(t, 1500.0, *breakdown.Labor)
	assert.Equal(t, 500.0, *breakdown.Overhead)
	assert.Equal(t, 5000.0, *breakdown.Total)
}

func TestExtractCurrencySymbolBetweenLabelAndAmount(t *testing.T) {
	extractor := NewBreakdownExtractor()

	breakdown := extractor.Extract("Total cost is $12,345.67 for this order.")
	require.NotNil(t, breakdown)
	require.NotNil(t, breakdown.Total)
	assert.Equal(t, 12345.67, *breakdown.Total)
}

func TestExtractNoAmounts(t *testing.T) {
	extractor := NewBreakdownExtractor()

	assert.Nil(t, extractor.Extract("资料不足，无法给出成本拆分。"))
	assert.Nil(t, extractor.Extract(""))
}
