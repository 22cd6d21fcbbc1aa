package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casecraft/casecraft_server/internal/api/middleware"
	"github.com/casecraft/casecraft_server/internal/model/dto"
	"github.com/casecraft/casecraft_server/internal/pkg/response"
	"github.com/casecraft/casecraft_server/internal/service"
)

type CaseStudyHandler struct {
	caseStudyService *service.CaseStudyService
}

func NewCaseStudyHandler(caseStudyService *service.CaseStudyService) *CaseStudyHandler {
	return &CaseStudyHandler{
		caseStudyService: caseStudyService,
	}
}

// Create 创建案例
// POST /api/case_studies
func (h *CaseStudyHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.caseStudyService.Create(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// List 获取案例列表
// GET /api/case_studies
func (h *CaseStudyHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.caseStudyService.List(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get 获取案例详情
// GET /api/case_studies/:id
func (h *CaseStudyHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid case study ID")
		return
	}

	detail, err := h.caseStudyService.Get(userID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Update 更新案例
// PUT /api/case_studies/:id
func (h *CaseStudyHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid case study ID")
		return
	}

	var req dto.UpdateCaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.caseStudyService.Update(userID, id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Delete 删除案例
// DELETE /api/case_studies/:id
func (h *CaseStudyHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid case study ID")
		return
	}

	if err := h.caseStudyService.Delete(userID, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case study deleted"})
}

// GenerateLinkedInPost 生成 LinkedIn 文案
// POST /api/case_studies/:id/linkedin_post
func (h *CaseStudyHandler) GenerateLinkedInPost(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid case study ID")
		return
	}

	resp, err := h.caseStudyService.GenerateLinkedInPost(c.Request.Context(), userID, id)
	if err != nil {
		switch err {
		case service.ErrSummaryRequired:
			response.ParamError(c, "Final summary is required for LinkedIn post generation")
		default:
			h.handleError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CaseStudyHandler) handleError(c *gin.Context, err error) {
	switch err {
	case service.ErrCaseStudyNotFound:
		response.NotFoundError(c, "Case study not found")
	case service.ErrNotOwner:
		response.PermissionError(c, "")
	default:
		response.ServerError(c, "")
	}
}
