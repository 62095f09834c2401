// blog-admin/pkg/service/upload/service.go
package upload

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/anzhiyu-c/blog-admin/internal/infra/storage"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
	"github.com/anzhiyu-c/blog-admin/pkg/domain/model"
)

const (
	defaultMaxSizeMB = 10
	allowedExtList   = ".jpg .jpeg .png .gif .webp .bmp"
)

// 允许上传的图片扩展名。SVG 可内嵌脚本，且上传文件与接口同源，不在允许范围内
var allowedExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

// Service 图片上传服务
type Service interface {
	// UploadImage 校验并保存图片，size 为客户端声明的大小，-1 表示未知
	UploadImage(ctx context.Context, file io.Reader, filename string, size int64, contentType string) (*model.UploadResponse, error)
}

type uploadService struct {
	provider storage.IStorageProvider
	maxBytes int64
}

func NewService(provider storage.IStorageProvider, cfg *config.Config) Service {
	maxMB := cfg.GetInt(config.KeyUploadMaxSize)
	if maxMB <= 0 {
		maxMB = defaultMaxSizeMB
	}
	return &uploadService{provider: provider, maxBytes: int64(maxMB) << 20}
}

func (s *uploadService) UploadImage(ctx context.Context, file io.Reader, filename string, size int64, contentType string) (*model.UploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return nil, fmt.Errorf("只允许上传图片文件 (%s): %w", allowedExtList, constant.ErrInvalidFileType)
	}
	if contentType = normalizeContentType(contentType); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("文件类型 %s 不是图片: %w", contentType, constant.ErrInvalidFileType)
	}
	if size > s.maxBytes {
		return nil, fmt.Errorf("文件大小不能超过 %dMB: %w", s.maxBytes>>20, constant.ErrFileTooLarge)
	}

	// 按文件头判断实际类型
	br := bufio.NewReaderSize(file, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	sniffed := http.DetectContentType(head)
	if !strings.HasPrefix(sniffed, "image/") {
		return nil, fmt.Errorf("文件内容不是有效的图片 (%s): %w", sniffed, constant.ErrInvalidFileType)
	}
	if contentType == "" {
		contentType = sniffed
	}

	name := uuid.NewString() + ext
	result, err := s.provider.Upload(ctx, &limitReader{r: br, remaining: s.maxBytes, max: s.maxBytes}, name, contentType)
	if err != nil {
		return nil, err
	}

	log.Printf("[Upload] 文件 %s 已保存为 %s (%d bytes)", filename, name, result.Size)
	return &model.UploadResponse{
		URL:      s.provider.PublicURL(name),
		Filename: name,
		Size:     result.Size,
	}, nil
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	// 部分客户端对所有文件都使用 octet-stream，此时以文件头为准
	if contentType == "application/octet-stream" {
		return ""
	}
	return contentType
}

// limitReader 超过大小限制时返回 ErrFileTooLarge，不会静默截断
type limitReader struct {
	r         io.Reader
	remaining int64
	max       int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("文件大小不能超过 %dMB: %w", l.max>>20, constant.ErrFileTooLarge)
	}
	// 多读一个字节用于判断是否超限
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("文件大小不能超过 %dMB: %w", l.max>>20, constant.ErrFileTooLarge)
	}
	return n, err
}
