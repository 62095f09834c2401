/*
 * @Description: 定义了所有存储驱动需要遵守的接口和公共结构
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2025-09-16 15:02:11
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/anzhiyu-c/blog-admin/pkg/config"
)

// 上传文件在存储中的目录，同时也是对外 URL 的路径前缀
const UploadPrefix = "uploads"

// 存储驱动名称
const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverOSS   = "oss"
)

// UploadResult 封装了上传操作成功后的文件信息。
type UploadResult struct {
	Key      string
	Size     int64
	MimeType string
}

// IStorageProvider 定义了所有存储提供者必须实现的接口。
// name 是不含目录的文件名，由调用方保证唯一。
type IStorageProvider interface {
	// Upload 将文件流写入存储。
	Upload(ctx context.Context, file io.Reader, name, contentType string) (*UploadResult, error)
	// PublicURL 返回文件对外的访问地址。
	PublicURL(name string) string
}

// NewProvider 根据 Upload.Driver 创建存储提供者
func NewProvider(cfg *config.Config) (IStorageProvider, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.GetString(config.KeyUploadDriver)))
	baseURL := cfg.GetString(config.KeyUploadBaseURL)

	switch driver {
	case "", DriverLocal:
		return NewLocalProvider(cfg.GetString(config.KeyUploadDir), baseURL)
	case DriverS3:
		return NewAWSS3Provider(S3Options{
			Region:    cfg.GetString(config.KeyS3Region),
			Endpoint:  cfg.GetString(config.KeyS3Endpoint),
			Bucket:    cfg.GetString(config.KeyS3Bucket),
			AccessKey: cfg.GetString(config.KeyS3AccessKey),
			SecretKey: cfg.GetString(config.KeyS3SecretKey),
			PublicURL: firstNonEmpty(cfg.GetString(config.KeyS3PublicURL), baseURL),
		})
	case DriverOSS:
		return NewAliOSSProvider(OSSOptions{
			Endpoint:  cfg.GetString(config.KeyOSSEndpoint),
			Bucket:    cfg.GetString(config.KeyOSSBucket),
			AccessKey: cfg.GetString(config.KeyOSSAccessKey),
			SecretKey: cfg.GetString(config.KeyOSSSecretKey),
			PublicURL: firstNonEmpty(cfg.GetString(config.KeyOSSPublicURL), baseURL),
		})
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", driver)
	}
}

// objectKey 云存储中的对象键，如 uploads/xxx.png
func objectKey(name string) string {
	return path.Join(UploadPrefix, name)
}

// joinURL 拼接 {base}/uploads/{name}，base 为空时返回站内相对路径
func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + objectKey(name)
}

// validName 文件名不能包含目录
func validName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("非法的文件名: %q", name)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
