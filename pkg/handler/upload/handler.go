package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/pkg/response"
	upload_service "github.com/anzhiyu-c/blog-admin/pkg/service/upload"
)

// Handler 处理图片上传
type Handler struct {
	svc upload_service.Service
}

func NewHandler(svc upload_service.Service) *Handler {
	return &Handler{svc: svc}
}

// UploadImage
// @Summary      上传图片
// @Description  上传一张图片，返回可直接访问的 URL
// @Tags         文件上传
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "图片文件"
// @Success      200 {object} response.Response{data=model.UploadResponse} "上传成功"
// @Failure      400 {object} response.Response "文件缺失、类型不支持或超过大小限制"
// @Failure      401 {object} response.Response "未登录"
// @Router       /upload [post]
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "请选择要上传的文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "无法读取上传的文件")
		return
	}
	defer file.Close()

	result, err := h.svc.UploadImage(c.Request.Context(), file, fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "上传成功")
}
