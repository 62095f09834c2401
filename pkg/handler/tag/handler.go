package tag

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	tag_service "github.com/anzhiyu-c/blog-admin/pkg/service/tag"
)

// Handler 封装了所有与文章标签相关的 HTTP 处理器。
type Handler struct {
	svc *tag_service.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc *tag_service.Service) *Handler {
	return &Handler{svc: svc}
}

// List
// @Summary      获取标签列表
// @Tags         文章标签
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.TagResponse} "成功响应"
// @Router       /tags [get]
func (h *Handler) List(c *gin.Context) {
	tags, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, tags, "获取列表成功")
}

// Get
// @Summary      获取标签详情
// @Tags         文章标签
// @Produce      json
// @Param        id path int true "标签ID"
// @Success      200 {object} response.Response{data=model.TagResponse} "成功响应"
// @Failure      404 {object} response.Response "标签不存在"
// @Router       /tags/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	tag, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, tag, "获取成功")
}

// ListByPost
// @Summary      获取文章的标签
// @Tags         文章标签
// @Produce      json
// @Param        postId path int true "文章ID"
// @Success      200 {object} response.Response{data=[]model.TagResponse} "成功响应"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /tags/post/{postId} [get]
func (h *Handler) ListByPost(c *gin.Context) {
	postID, err := utils.ParseUintParam(c, "postId")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	tags, err := h.svc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, tags, "获取成功")
}

// Create
// @Summary      创建新标签
// @Tags         文章标签
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        tag body model.TagRequest true "创建标签的请求体"
// @Success      201 {object} response.Response{data=model.TagResponse} "创建成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      409 {object} response.Response "标签名称已存在"
// @Router       /tags [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	tag, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, tag, "创建成功")
}

// Update
// @Summary      更新标签
// @Tags         文章标签
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "标签ID"
// @Param        tag body model.TagRequest true "更新标签的请求体"
// @Success      200 {object} response.Response{data=model.TagResponse} "更新成功"
// @Failure      404 {object} response.Response "标签不存在"
// @Failure      409 {object} response.Response "标签名称已存在"
// @Router       /tags/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	tag, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, tag, "更新成功")
}

// Delete
// @Summary      删除标签
// @Description  同时解除该标签与所有文章的关联
// @Tags         文章标签
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "标签ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      404 {object} response.Response "标签不存在"
// @Router       /tags/{id} [delete]
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
