/*
 * @Description: AWS S3存储提供者实现（使用aws-sdk-go-v2），同样适用于 MinIO 等 S3 兼容服务
 * @Author: 安知鱼
 * @Date: 2025-09-28 19:00:00
 * @LastEditTime: 2025-12-02 18:30:00
 * @LastEditors: 安知鱼
 */
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options S3 驱动的连接参数
type S3Options struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// AWSS3Provider 实现了 IStorageProvider 接口，用于处理与AWS S3的所有交互。
type AWSS3Provider struct {
	client *s3.Client
	opts   S3Options
}

// NewAWSS3Provider 是 AWSS3Provider 的构造函数。
func NewAWSS3Provider(opts S3Options) (IStorageProvider, error) {
	if opts.Bucket == "" {
		return nil, errors.New("AWS S3配置缺少存储桶名称")
	}
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("AWS S3配置缺少AccessKey或SecretKey")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("创建AWS S3配置失败: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // 自定义endpoint通常需要path-style
		}
	})
	log.Printf("[AWS S3] 成功创建客户端 - 区域: %s, 存储桶: %s", opts.Region, opts.Bucket)
	return &AWSS3Provider{client: client, opts: opts}, nil
}

func (p *AWSS3Provider) Upload(ctx context.Context, file io.Reader, name, contentType string) (*UploadResult, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	key := objectKey(name)

	// 读入内存以获得准确的 ContentLength，S3 兼容服务对 SHA256 校验更严格
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	hash := sha256.Sum256(content)

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(p.opts.Bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(content),
		ContentLength:  aws.Int64(int64(len(content))),
		ContentType:    aws.String(contentType),
		ChecksumSHA256: aws.String(base64.StdEncoding.EncodeToString(hash[:])),
	})
	if err != nil {
		log.Printf("[AWS S3] 上传失败: %v", err)
		return nil, fmt.Errorf("上传文件到AWS S3失败: %w", err)
	}

	log.Printf("[AWS S3] 上传成功: objectKey=%s", key)
	return &UploadResult{Key: key, Size: int64(len(content)), MimeType: contentType}, nil
}

// PublicURL 未配置公开地址时使用 S3 默认的虚拟主机域名
func (p *AWSS3Provider) PublicURL(name string) string {
	base := p.opts.PublicURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", p.opts.Bucket, p.opts.Region)
	}
	return joinURL(base, name)
}
