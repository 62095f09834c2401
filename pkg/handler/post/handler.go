package post

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"

	postSvc "github.com/anzhiyu-c/blog-admin/pkg/service/post"
)

// Handler 封装了所有与文章相关的 HTTP 处理器。
type Handler struct {
	svc postSvc.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc postSvc.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPublished 处理已发布文章的分页查询。
// @Summary      获取已发布文章列表
// @Description  置顶文章排在最前，其余按创建时间倒序
// @Tags         文章
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Param        keyword query string false "标题或内容关键字"
// @Success      200 {object} response.Response{data=model.PageResult[model.PostResponse]} "成功响应"
// @Router       /posts [get]
func (h *Handler) ListPublished(c *gin.Context) {
	page, size := utils.PageQuery(c)
	result, err := h.svc.ListPublished(c.Request.Context(), page, size, c.Query("keyword"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取列表成功")
}

// ListAll 管理员查看全部文章，可按状态筛选。
// @Summary      管理员文章列表
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Param        keyword query string false "关键字"
// @Param        status query int false "文章状态 0-草稿 1-已发布 2-已下线"
// @Success      200 {object} response.Response{data=model.PageResult[model.PostResponse]} "成功响应"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /posts/admin [get]
func (h *Handler) ListAll(c *gin.Context) {
	status, err := utils.OptionalIntQuery(c, "status")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	page, size := utils.PageQuery(c)

	result, err := h.svc.ListAll(c.Request.Context(), page, size, c.Query("keyword"), status)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取列表成功")
}

// ListMine 当前用户自己的文章，包含草稿。
// @Summary      我的文章
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=model.PageResult[model.PostResponse]} "成功响应"
// @Failure      401 {object} response.Response "未登录"
// @Router       /posts/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, "请先登录")
		return
	}
	page, size := utils.PageQuery(c)

	result, err := h.svc.ListByAuthor(c.Request.Context(), user.ID, page, size)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取列表成功")
}

// ListByCategory
// @Summary      按分类获取已发布文章
// @Tags         文章
// @Produce      json
// @Param        categoryId path int true "分类ID"
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=model.PageResult[model.PostResponse]} "成功响应"
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /posts/category/{categoryId} [get]
func (h *Handler) ListByCategory(c *gin.Context) {
	categoryID, err := utils.ParseUintParam(c, "categoryId")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	page, size := utils.PageQuery(c)

	result, err := h.svc.ListByCategory(c.Request.Context(), categoryID, page, size)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取列表成功")
}

// ListByTag
// @Summary      按标签获取已发布文章
// @Tags         文章
// @Produce      json
// @Param        tagId path int true "标签ID"
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=model.PageResult[model.PostResponse]} "成功响应"
// @Failure      404 {object} response.Response "标签不存在"
// @Router       /posts/tag/{tagId} [get]
func (h *Handler) ListByTag(c *gin.Context) {
	tagID, err := utils.ParseUintParam(c, "tagId")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	page, size := utils.PageQuery(c)

	result, err := h.svc.ListByTag(c.Request.Context(), tagID, page, size)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取列表成功")
}

// Get 获取文章详情，同时记录一次浏览。
// @Summary      获取文章详情
// @Description  未发布的文章只有作者本人和管理员可见
// @Tags         文章
// @Produce      json
// @Param        id path int true "文章ID"
// @Success      200 {object} response.Response{data=model.PostResponse} "成功响应"
// @Failure      403 {object} response.Response "文章未发布"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	post, err := h.svc.Get(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, post, "获取成功")
}

// Create 处理创建文章的请求。
// @Summary      创建文章
// @Description  status 缺省时直接发布，摘要为空时从正文自动截取
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body model.PostRequest true "文章内容"
// @Success      201 {object} response.Response{data=model.PostResponse} "创建成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /posts [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	post, err := h.svc.Create(c.Request.Context(), auth.CurrentUser(c), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, post, "创建成功")
}

// Update 处理更新文章的请求。
// @Summary      更新文章
// @Description  tagIds 缺省时保留原有标签，传空数组清空标签
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "文章ID"
// @Param        body body model.PostRequest true "文章内容"
// @Success      200 {object} response.Response{data=model.PostResponse} "更新成功"
// @Failure      403 {object} response.Response "无权修改"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /posts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	post, err := h.svc.Update(c.Request.Context(), auth.CurrentUser(c), id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, post, "更新成功")
}

// Delete 软删除文章。
// @Summary      删除文章
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "文章ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      403 {object} response.Response "无权删除"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "删除成功")
}

// Like 为文章点赞。
// @Summary      点赞文章
// @Tags         文章
// @Produce      json
// @Param        id path int true "文章ID"
// @Success      200 {object} response.Response{data=object{likeCount=int}} "点赞成功"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /posts/{id}/like [post]
func (h *Handler) Like(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	count, err := h.svc.Like(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"likeCount": count}, "点赞成功")
}

// SetTop 设置或取消置顶。
// @Summary      文章置顶
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "文章ID"
// @Param        body body model.SetTopRequest true "是否置顶"
// @Success      200 {object} response.Response "操作成功"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /posts/{id}/top [put]
func (h *Handler) SetTop(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.SetTopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	if err := h.svc.SetTop(c.Request.Context(), id, req.IsTop); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, gin.H{"isTop": req.IsTop}, "操作成功")
}
