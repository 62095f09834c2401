package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// 校验错误里使用 json 字段名，而不是 Go 结构体字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// FailWithBindError 处理 ShouldBind 系列方法返回的错误，统一返回 400。
// 对于字段校验错误，data 中会带上 字段名 -> 错误说明 的映射。
func FailWithBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describeFieldError(fe)
		}
		FailWithData(c, http.StatusBadRequest, "请求参数校验失败", fields)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("请求参数无效: 字段 %s 类型错误", typeErr.Field))
		return
	}

	Fail(c, http.StatusBadRequest, "请求参数无效: "+err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "min":
		return fmt.Sprintf("长度不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("长度不能超过 %s", fe.Param())
	case "email":
		return "邮箱格式不正确"
	case "oneof":
		return fmt.Sprintf("必须是 [%s] 之一", fe.Param())
	default:
		return fmt.Sprintf("校验失败 (%s)", fe.Tag())
	}
}
