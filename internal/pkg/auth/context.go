package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

// CurrentUser 返回鉴权中间件放入上下文的用户，匿名请求返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// CanModify 资源所有者或管理员可以修改资源
func CanModify(actor *model.User, ownerID uint) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == ownerID
}
