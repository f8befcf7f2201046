package handler

import (
	"net/http"

	"costwise-go/internal/model"
	"costwise-go/internal/service"
	"costwise-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ProjectHandler 负责处理项目相关的 API 请求。
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler 创建一个新的 ProjectHandler 实例。
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ProjectRequest 定义了创建/更新项目的请求体结构。
type ProjectRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Status        string           `json:"status"`
	EstimatedCost float64          `json:"estimatedCost"`
	ActualCost    float64          `json:"actualCost"`
	StartDate     *model.LocalTime `json:"startDate"`
	EndDate       *model.LocalTime `json:"endDate"`
}

func (req *ProjectRequest) toModel() *model.Project {
	return &model.Project{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		EstimatedCost: req.EstimatedCost,
		ActualCost:    req.ActualCost,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}
}

// Create 处理创建项目请求。
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：项目名称不能为空"})
		return
	}

	project := req.toModel()
	if err := h.projectService.Create(project); err != nil {
		log.Warnf("Create project failed, name: %s, error: %v", req.Name, err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": project, "message": "success"})
}

// Update 处理更新项目请求。
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}

	project := req.toModel()
	project.ID = id
	if err := h.projectService.Update(project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": project, "message": "success"})
}

// Delete 处理删除项目请求。
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.projectService.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success"})
}

// Get 返回单个项目详情。
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	project, err := h.projectService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "项目不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": project, "message": "success"})
}

// List 返回全部项目列表。
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": projects, "message": "success"})
}

// CostSummary 返回项目的成本汇总。
func (h *ProjectHandler) CostSummary(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	summary, err := h.projectService.CostSummary(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "项目不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": summary, "message": "success"})
}
