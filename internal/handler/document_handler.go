package handler

import (
	"net/http"
	"strconv"

	"costwise-go/internal/service"
	"costwise-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 负责处理文档上传与查阅相关的 API 请求。
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload 处理 multipart 文档上传，成功后文档会被异步索引。
// 表单字段：file（必填）、projectId（可选）。
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少 file 表单字段"})
		return
	}

	var projectID *uint
	if raw := c.PostForm("projectId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 projectId 参数"})
			return
		}
		u := uint(v)
		projectID = &u
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Upload: failed to open multipart file, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "读取上传文件失败"})
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(
		c.Request.Context(),
		file,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		projectID,
	)
	if err != nil {
		log.Warnf("Upload: document upload failed, fileName: %s, error: %v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": doc, "message": "文档已上传，索引任务已投递"})
}

// Get 返回单个文档的元数据。
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	doc, err := h.documentService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "文档不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": doc, "message": "success"})
}

// List 返回文档列表，支持 projectId 过滤。
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := parseOptionalUintQuery(c, "projectId")
	if !ok {
		return
	}
	docs, err := h.documentService.List(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": docs, "message": "success"})
}

// Reindex 为指定文档重新投递索引任务。
func (h *DocumentHandler) Reindex(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := h.documentService.Reindex(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "重新索引任务已投递"})
}

// DownloadURL 返回文档的预签名下载链接。
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	url, err := h.documentService.DownloadURL(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "文档不存在或生成链接失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"url": url}, "message": "success"})
}
