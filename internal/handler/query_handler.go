package handler

import (
	"errors"
	"net/http"

	"costwise-go/internal/service"
	"costwise-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QueryHandler 负责处理自然语言成本查询请求。
type QueryHandler struct {
	queryService service.QueryService
}

// NewQueryHandler 创建一个新的 QueryHandler 实例。
func NewQueryHandler(queryService service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// QueryRequest 定义了自然语言查询 API 的请求体结构。
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	ProjectID *uint  `json:"projectId"`
	TopK      int    `json:"topK"`
}

// Query 处理一次自然语言成本查询。
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：query 不能为空"})
		return
	}

	result, err := h.queryService.Answer(c.Request.Context(), req.Query, req.ProjectID, req.TopK)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "query 不能为空"})
			return
		}
		log.Errorf("Query: failed to answer, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "查询处理失败，请稍后重试"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": result, "message": "success"})
}
