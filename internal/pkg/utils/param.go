package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
)

// ParseUintParam 解析路径中的数字ID，非法值返回 ErrBadRequest
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: 无效的ID '%s'", constant.ErrBadRequest, raw)
	}
	return uint(id), nil
}

// PageQuery 读取 page、size 查询参数，非数字按 0 处理，交给 NormalizePage 修正
func PageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	size, _ = strconv.Atoi(c.Query("size"))
	return page, size
}

// OptionalIntQuery 读取可选的整数查询参数，参数缺失时返回 nil
func OptionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: 参数 %s 必须是整数", constant.ErrBadRequest, name)
	}
	return &v, nil
}
