package category

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	category_service "github.com/anzhiyu-c/blog-admin/pkg/service/category"
)

// Handler 封装了所有与文章分类相关的 HTTP 处理器。
type Handler struct {
	svc *category_service.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc *category_service.Service) *Handler {
	return &Handler{svc: svc}
}

// List
// @Summary      获取分类列表
// @Description  按 sortOrder 升序返回全部分类
// @Tags         文章分类
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.CategoryResponse} "成功响应"
// @Router       /categories [get]
func (h *Handler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, categories, "获取列表成功")
}

// Get
// @Summary      获取分类详情
// @Tags         文章分类
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=model.CategoryResponse} "成功响应"
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /categories/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	category, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, category, "获取成功")
}

// Create
// @Summary      创建新分类
// @Tags         文章分类
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        category body model.CategoryRequest true "创建分类的请求体"
// @Success      201 {object} response.Response{data=model.CategoryResponse} "创建成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      409 {object} response.Response "分类名称已存在"
// @Router       /categories [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	category, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, category, "创建成功")
}

// Update
// @Summary      更新分类
// @Tags         文章分类
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "分类ID"
// @Param        category body model.CategoryRequest true "更新分类的请求体"
// @Success      200 {object} response.Response{data=model.CategoryResponse} "更新成功"
// @Failure      404 {object} response.Response "分类不存在"
// @Failure      409 {object} response.Response "分类名称已存在"
// @Router       /categories/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	category, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, category, "更新成功")
}

// Delete
// @Summary      删除分类
// @Description  仍有文章引用的分类不能删除
// @Tags         文章分类
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      404 {object} response.Response "分类不存在"
// @Failure      409 {object} response.Response "分类下仍有文章"
// @Router       /categories/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "删除成功")
}
