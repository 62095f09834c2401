package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/blog-admin/pkg/constant"
)

func newContext(target string, params gin.Params) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	c.Params = params
	return c
}

func TestParseUintParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: "0", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		c := newContext("/", gin.Params{{Key: "id", Value: tt.raw}})
		got, err := ParseUintParam(c, "id")
		if tt.wantErr {
			if !errors.Is(err, constant.ErrBadRequest) {
				t.Errorf("ParseUintParam(%q) error = %v, want ErrBadRequest", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseUintParam(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

func TestPageQuery(t *testing.T) {
	page, size := PageQuery(newContext("/?page=3&size=20", nil))
	if page != 3 || size != 20 {
		t.Errorf("PageQuery() = %d, %d", page, size)
	}
	page, size = PageQuery(newContext("/?page=x", nil))
	if page != 0 || size != 0 {
		t.Errorf("非法参数应返回 0, got %d, %d", page, size)
	}
}

func TestOptionalIntQuery(t *testing.T) {
	v, err := OptionalIntQuery(newContext("/", nil), "status")
	if err != nil || v != nil {
		t.Errorf("缺省参数 = %v, %v", v, err)
	}
	v, err = OptionalIntQuery(newContext("/?status=2", nil), "status")
	if err != nil || v == nil || *v != 2 {
		t.Errorf("status=2 解析结果 = %v, %v", v, err)
	}
	if _, err := OptionalIntQuery(newContext("/?status=x", nil), "status"); !errors.Is(err, constant.ErrBadRequest) {
		t.Errorf("非法参数 error = %v", err)
	}
}
