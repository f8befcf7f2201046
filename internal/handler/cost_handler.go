package handler

import (
	"net/http"
	"strconv"
	"time"

	"costwise-go/internal/model"
	"costwise-go/internal/service"

	"github.com/gin-gonic/gin"
)

// CostHandler 负责处理三类成本记录相关的 API 请求。
type CostHandler struct {
	costService service.CostService
}

// NewCostHandler 创建一个新的 CostHandler 实例。
func NewCostHandler(costService service.CostService) *CostHandler {
	return &CostHandler{costService: costService}
}

// RecordProduction 处理录入生产成本请求。
func (h *CostHandler) RecordProduction(c *gin.Context) {
	var record model.ProductionCost
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}
	if err := h.costService.RecordProductionCost(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": record, "message": "success"})
}

// RecordTransportation 处理录入运输费用请求。
func (h *CostHandler) RecordTransportation(c *gin.Context) {
	var record model.TransportationCost
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}
	if err := h.costService.RecordTransportationCost(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": record, "message": "success"})
}

// RecordInstallation 处理录入安装费用请求。
func (h *CostHandler) RecordInstallation(c *gin.Context) {
	var record model.InstallationCost
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}
	if err := h.costService.RecordInstallationCost(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": record, "message": "success"})
}

// ListProduction 按产品与日期范围筛选生产成本记录。
// 查询参数：productId（可选）、startDate/endDate（可选，格式 2006-01-02）。
func (h *CostHandler) ListProduction(c *gin.Context) {
	productID, ok := parseOptionalUintQuery(c, "productId")
	if !ok {
		return
	}
	startDate, ok := parseOptionalDateQuery(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := parseOptionalDateQuery(c, "endDate")
	if !ok {
		return
	}

	records, err := h.costService.ListProductionCosts(productID, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": records, "message": "success"})
}

// ListTransportation 按项目筛选运输费用记录。
func (h *CostHandler) ListTransportation(c *gin.Context) {
	projectID, ok := parseOptionalUintQuery(c, "projectId")
	if !ok {
		return
	}
	records, err := h.costService.ListTransportationCosts(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": records, "message": "success"})
}

// ListInstallation 按项目筛选安装费用记录。
func (h *CostHandler) ListInstallation(c *gin.Context) {
	projectID, ok := parseOptionalUintQuery(c, "projectId")
	if !ok {
		return
	}
	records, err := h.costService.ListInstallationCosts(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": records, "message": "success"})
}

// parseOptionalUintQuery 解析可选的无符号整数查询参数，非法时响应 400。
func parseOptionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 " + name + " 参数"})
		return nil, false
	}
	u := uint(v)
	return &u, true
}

// parseOptionalDateQuery 解析可选的日期查询参数（2006-01-02），非法时响应 400。
func parseOptionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 " + name + " 参数，应为 2006-01-02 格式"})
		return nil, false
	}
	return &t, true
}
