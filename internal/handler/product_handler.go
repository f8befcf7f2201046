package handler

import (
	"net/http"
	"strconv"

	"costwise-go/internal/model"
	"costwise-go/internal/service"
	"costwise-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ProductHandler 负责处理产品档案相关的 API 请求。
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler 创建一个新的 ProductHandler 实例。
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRequest 定义了创建/更新产品的请求体结构。
type ProductRequest struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required"`
	Specification string `json:"specification"`
	Unit          string `json:"unit"`
}

// Create 处理创建产品请求。
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：产品名称与编码不能为空"})
		return
	}

	product := &model.Product{
		Name:          req.Name,
		Code:          req.Code,
		Specification: req.Specification,
		Unit:          req.Unit,
	}
	if err := h.productService.Create(product); err != nil {
		log.Warnf("Create product failed, code: %s, error: %v", req.Code, err)
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": product, "message": "success"})
}

// Update 处理更新产品请求。
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载"})
		return
	}

	product := &model.Product{
		Name:          req.Name,
		Code:          req.Code,
		Specification: req.Specification,
		Unit:          req.Unit,
	}
	product.ID = id
	if err := h.productService.Update(product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": product, "message": "success"})
}

// Delete 处理删除产品请求。
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.productService.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success"})
}

// Get 返回单个产品详情。
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	product, err := h.productService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "产品不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": product, "message": "success"})
}

// List 返回全部产品列表。
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": products, "message": "success"})
}

// parseIDParam 解析路径中的 :id 参数，非法时直接响应 400。
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 ID 参数"})
		return 0, err
	}
	return uint(id), nil
}
