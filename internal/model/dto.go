package model

// QuerySource 是返回给前端的单条检索来源，按相似度降序排列。
type QuerySource struct {
	FileName string  `json:"fileName"`
	Score    float64 `json:"score"`
	Excerpt  string  `json:"excerpt,omitempty"`
}

// CostBreakdown 是从生成答案中尽力提取的结构化成本拆分。
// 只有真正被提取到的字段才会被填充；全部缺失时整个对象为 nil。
type CostBreakdown struct {
	Material *float64 `json:"material,omitempty"`
	Labor    *float64 `json:"labor,omitempty"`
	Overhead *float64 `json:"overhead,omitempty"`
	Total    *float64 `json:"total,omitempty"`
}

// QueryResult 是一次自然语言查询的完整响应。
type QueryResult struct {
	Answer    string         `json:"answer"`
	Sources   []QuerySource  `json:"sources"`
	Breakdown *CostBreakdown `json:"costBreakdown,omitempty"`
}

// ProjectCostSummary 是项目成本汇总的响应结构。
type ProjectCostSummary struct {
	ProjectID           uint    `json:"projectId"`
	ProjectName         string  `json:"projectName"`
	EstimatedCost       float64 `json:"estimatedCost"`
	ActualCost          float64 `json:"actualCost"`
	TransportationTotal float64 `json:"transportationTotal"`
	InstallationTotal   float64 `json:"installationTotal"`
}
