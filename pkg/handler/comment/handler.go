// pkg/handler/comment/handler.go
package comment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/auth"
	"github.com/anzhiyu-c/blog-admin/internal/pkg/utils"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
	"github.com/anzhiyu-c/blog-admin/pkg/response"
	comment_service "github.com/anzhiyu-c/blog-admin/pkg/service/comment"
)

type Handler struct {
	svc *comment_service.Service
}

func NewHandler(svc *comment_service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListByPost
// @Summary      获取文章的评论树
// @Description  返回指定文章下所有已审核的评论，回复嵌套在父评论的 replies 中
// @Tags         评论
// @Produce      json
// @Param        postId path int true "文章ID"
// @Success      200 {object} response.Response{data=[]model.CommentResponse} "成功响应"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /comments/post/{postId} [get]
func (h *Handler) ListByPost(c *gin.Context) {
	postID, err := utils.ParseUintParam(c, "postId")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	comments, err := h.svc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, comments, "获取成功")
}

// Get
// @Summary      获取单条评论
// @Description  未审核通过的评论只有作者本人和管理员可见
// @Tags         评论
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{data=model.CommentResponse} "成功响应"
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	comment, err := h.svc.Get(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, comment, "获取成功")
}

// AdminList
// @Summary      管理员评论列表
// @Description  分页获取全部评论，可按审核状态筛选
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(10)
// @Param        status query int false "审核状态 0-待审核 1-已通过 2-已拒绝"
// @Success      200 {object} response.Response{data=model.PageResult[model.CommentResponse]} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /comments/admin [get]
func (h *Handler) AdminList(c *gin.Context) {
	status, err := utils.OptionalIntQuery(c, "status")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	page, size := utils.PageQuery(c)

	result, err := h.svc.AdminList(c.Request.Context(), page, size, status)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取成功")
}

// Create
// @Summary      发表评论
// @Description  parentId 为空时是顶级评论，否则回复同一篇文章下的评论
// @Tags         评论
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body model.CreateCommentRequest true "评论内容"
// @Success      201 {object} response.Response{data=model.CommentResponse} "创建成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /comments [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), auth.CurrentUser(c), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	message := "评论成功"
	if comment.Status == model.CommentStatusPending {
		message = "评论已提交，等待审核"
	}
	response.SuccessWithStatus(c, http.StatusCreated, comment, message)
}

// Update
// @Summary      修改评论
// @Tags         评论
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "评论ID"
// @Param        body body model.UpdateCommentRequest true "评论内容"
// @Success      200 {object} response.Response{data=model.CommentResponse} "更新成功"
// @Failure      403 {object} response.Response "无权修改"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBindError(c, err)
		return
	}

	comment, err := h.svc.Update(c.Request.Context(), auth.CurrentUser(c), id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, comment, "更新成功")
}

// Delete
// @Summary      删除评论
// @Description  删除评论及其全部回复
// @Tags         评论
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      403 {object} response.Response "无权删除"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id} [delete]
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

// Approve
// @Summary      审核通过评论
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{data=model.CommentResponse} "操作成功"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	h.moderate(c, h.svc.Approve, "审核通过")
}

// Reject
// @Summary      驳回评论
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{data=model.CommentResponse} "操作成功"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /comments/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	h.moderate(c, h.svc.Reject, "已驳回")
}

func (h *Handler) moderate(c *gin.Context, action func(ctx context.Context, id uint) (*model.CommentResponse, error), message string) {
	id, err := utils.ParseUintParam(c, "id")
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	comment, err := action(c.Request.Context(), id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, comment, message)
}
