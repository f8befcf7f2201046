// Package service 包含了应用的业务逻辑层。
package service

import (
	"fmt"
	"strings"

	"costwise-go/internal/repository"
	"costwise-go/pkg/log"
)

// NoCostDataText 是没有任何成本数据时的固定占位文案。
// 返回固定文案而不是空串，保证下游的 prompt 组装始终有非空的成本上下文段。
const NoCostDataText = "暂无任何成本数据。"

// ContextBuilder 定义了成本上下文组装器的接口。
type ContextBuilder interface {
	// BuildContext 渲染一段紧凑的成本统计文本，projectID 非空时附加项目级统计。
	// 永不返回错误：底层查询失败会被记录日志并按"无数据"处理。
	BuildContext(projectID *uint) string
}

type costContextBuilder struct {
	costRepo    repository.CostRepository
	projectRepo repository.ProjectRepository
}

// NewCostContextBuilder 创建一个新的成本上下文组装器。
func NewCostContextBuilder(costRepo repository.CostRepository, projectRepo repository.ProjectRepository) ContextBuilder {
	return &costContextBuilder{
		costRepo:    costRepo,
		projectRepo: projectRepo,
	}
}

// BuildContext 组装注入生成 prompt 的成本统计段。
// 每一行只有在对应记录存在时才会出现。
func (b *costContextBuilder) BuildContext(projectID *uint) string {
	var lines []string

	// 全部历史记录的平均单位生产成本，始终尝试包含
	if stat, err := b.costRepo.AvgProductionUnitCost(); err != nil {
		log.Errorf("[CostContext] 查询平均生产成本失败: %v", err)
	} else if stat.Count > 0 {
		lines = append(lines, fmt.Sprintf("历史平均单位生产成本: %.2f（基于 %d 条记录）", stat.Average, stat.Count))
	}

	if projectID != nil {
		lines = append(lines, b.projectLines(*projectID)...)
	}

	if len(lines) == 0 {
		return NoCostDataText
	}
	return strings.Join(lines, "\n")
}

// projectLines 渲染项目级统计；项目不存在或查询失败时返回空。
func (b *costContextBuilder) projectLines(projectID uint) []string {
	project, err := b.projectRepo.FindByID(projectID)
	if err != nil {
		log.Warnf("[CostContext] 查询项目失败, projectID: %d, error: %v", projectID, err)
		return nil
	}

	lines := []string{
		fmt.Sprintf("项目「%s」预估总成本: %.2f，实际总成本: %.2f", project.Name, project.EstimatedCost, project.ActualCost),
	}

	if stat, err := b.costRepo.AvgTransportationCost(projectID); err != nil {
		log.Errorf("[CostContext] 查询项目平均运输费用失败, projectID: %d, error: %v", projectID, err)
	} else if stat.Count > 0 {
		lines = append(lines, fmt.Sprintf("该项目平均运输费用: %.2f（基于 %d 条记录）", stat.Average, stat.Count))
	}

	if stat, err := b.costRepo.AvgInstallationCost(projectID); err != nil {
		log.Errorf("[CostContext] 查询项目平均安装费用失败, projectID: %d, error: %v", projectID, err)
	} else if stat.Count > 0 {
		lines = append(lines, fmt.Sprintf("该项目平均安装费用: %.2f（基于 %d 条记录）", stat.Average, stat.Count))
	}

	return lines
}
