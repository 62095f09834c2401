// internal/infra/storage/local.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
)

// LocalProvider 实现了 IStorageProvider 接口，文件保存在本机磁盘，由 /uploads 静态路由对外提供。
type LocalProvider struct {
	dir     string
	baseURL string
}

// NewLocalProvider 创建本地存储，目录不存在时自动创建。
func NewLocalProvider(dir, baseURL string) (IStorageProvider, error) {
	if dir == "" {
		return nil, errors.New("本地存储目录不能为空")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("解析上传目录失败: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("创建上传目录 '%s' 失败: %w", absDir, err)
	}
	return &LocalProvider{dir: absDir, baseURL: baseURL}, nil
}

// Dir 返回文件保存的物理目录
func (p *LocalProvider) Dir() string {
	return p.dir
}

// Upload 先写入同目录下的临时文件，完成后再重命名，避免出现写了一半的文件。
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, name, contentType string) (*UploadResult, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(p.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("无法创建临时文件: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, file)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("写入文件内容失败: %w", err)
	}
	// 确保数据写入磁盘
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("同步文件到磁盘失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("关闭临时文件失败: %w", err)
	}

	finalPath := filepath.Join(p.dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("保存文件 '%s' 失败: %w", finalPath, err)
	}
	if err := os.Chmod(finalPath, 0644); err != nil {
		log.Printf("[LocalProvider] 修改文件权限失败: %v", err)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	return &UploadResult{Key: name, Size: size, MimeType: contentType}, nil
}

func (p *LocalProvider) PublicURL(name string) string {
	return joinURL(p.baseURL, name)
}
