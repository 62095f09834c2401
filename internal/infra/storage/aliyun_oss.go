/*
 * @Description: 阿里云OSS存储提供者实现
 * @Author: 安知鱼
 * @Date: 2025-09-28 18:00:00
 * @LastEditTime: 2025-12-02 18:22:36
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSOptions 阿里云 OSS 驱动的连接参数
type OSSOptions struct {
	Endpoint  string // 如 https://oss-cn-shanghai.aliyuncs.com
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// AliOSSProvider 实现了 IStorageProvider 接口，用于处理与阿里云OSS的所有交互。
type AliOSSProvider struct {
	bucket *oss.Bucket
	opts   OSSOptions
}

func NewAliOSSProvider(opts OSSOptions) (IStorageProvider, error) {
	if opts.Bucket == "" {
		return nil, errors.New("阿里云OSS配置缺少存储桶名称")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("阿里云OSS配置缺少AccessKey或SecretKey")
	}
	if opts.Endpoint == "" {
		return nil, errors.New("阿里云OSS配置缺少Endpoint")
	}

	client, err := oss.New(opts.Endpoint, opts.AccessKey, opts.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("创建阿里云OSS客户端失败: %w", err)
	}
	bucket, err := client.Bucket(opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取阿里云OSS存储桶失败: %w", err)
	}
	log.Printf("[阿里云OSS] 成功创建客户端和存储桶: %s", opts.Bucket)
	return &AliOSSProvider{bucket: bucket, opts: opts}, nil
}

func (p *AliOSSProvider) Upload(ctx context.Context, file io.Reader, name, contentType string) (*UploadResult, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	key := objectKey(name)
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}

	counter := &countingReader{r: file}
	if err := p.bucket.PutObject(key, counter, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		log.Printf("[阿里云OSS] 上传失败: %v", err)
		return nil, fmt.Errorf("上传文件到阿里云OSS失败: %w", err)
	}

	log.Printf("[阿里云OSS] 上传成功: objectKey=%s", key)
	return &UploadResult{Key: key, Size: counter.n, MimeType: contentType}, nil
}

// PublicURL 未配置公开地址时使用存储桶的默认域名
func (p *AliOSSProvider) PublicURL(name string) string {
	base := p.opts.PublicURL
	if base == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(p.opts.Endpoint, "https://"), "http://")
		base = fmt.Sprintf("https://%s.%s", p.opts.Bucket, host)
	}
	return joinURL(base, name)
}

// countingReader 统计实际上传的字节数
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
