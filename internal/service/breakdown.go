package service

import (
	"regexp"
	"strconv"
	"strings"

	"costwise-go/internal/model"
)

// BreakdownExtractor 从生成答案中尽力提取结构化的成本拆分。
// 默认实现基于正则启发式；如需更可靠的结果，可在同一接口后面
// 换成一次约束生成调用（以额外的模型往返为代价）。
type BreakdownExtractor interface {
	// Extract 返回提取到的成本拆分；一个字段都没匹配到时返回 nil，
	// 绝不返回全零的合成对象。结果仅供参考，不具权威性。
	Extract(answer string) *model.CostBreakdown
}

// 每类字段一个宽松模式：标签（中英文均可）后跟不超过 12 个非数字字符，
// 再取第一个带可选千分位与小数的数字。
var (
	reMaterial = regexp.MustCompile(`(?i)(?:materials?|原?材料(?:成本|费用)?)[^\d\n]{0,12}(\d[\d,]*(?:\.\d+)?)`)
	reLabor    = regexp.MustCompile(`(?i)(?:labou?r|人工(?:成本|费用)?)[^\d\n]{0,12}(\d[\d,]*(?:\.\d+)?)`)
	reOverhead = regexp.MustCompile(`(?i)(?:overheads?|制造费用|间接费用)[^\d\n]{0,12}(\d[\d,]*(?:\.\d+)?)`)
	reTotal    = regexp.MustCompile(`(?i)(?:total|总(?:计|成本|金额|额))[^\d\n]{0,12}(\d[\d,]*(?:\.\d+)?)`)
)

type regexBreakdownExtractor struct{}

// NewBreakdownExtractor 创建默认的正则成本拆分提取器。
func NewBreakdownExtractor() BreakdownExtractor {
	return regexBreakdownExtractor{}
}

func (regexBreakdownExtractor) Extract(answer string) *model.CostBreakdown {
	breakdown := &model.CostBreakdown{
		Material: matchAmount(reMaterial, answer),
		Labor:    matchAmount(reLabor, answer),
		Overhead: matchAmount(reOverhead, answer),
		Total:    matchAmount(reTotal, answer),
	}
	if breakdown.Material == nil && breakdown.Labor == nil && breakdown.Overhead == nil && breakdown.Total == nil {
		return nil
	}
	return breakdown
}

// matchAmount 取第一处匹配的金额，容忍千分位分隔符。
func matchAmount(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}
