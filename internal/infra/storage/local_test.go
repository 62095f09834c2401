package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anzhiyu-c/blog-admin/pkg/config"
)

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	p, err := NewLocalProvider(dir, "http://localhost:8091/")
	if err != nil {
		t.Fatalf("NewLocalProvider() error = %v", err)
	}

	res, err := p.Upload(ctx, strings.NewReader("png-bytes"), "a.png", "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.Size != 9 || res.MimeType != "image/png" {
		t.Errorf("Upload() = %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("文件内容 = %q, %v", data, err)
	}
	if got := p.PublicURL("a.png"); got != "http://localhost:8091/uploads/a.png" {
		t.Errorf("PublicURL() = %s", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Errorf("上传后目录中应只有目标文件, got %d 项, %v", len(entries), err)
	}

	for _, name := range []string{"../evil.png", "a/b.png", "", ".."} {
		if _, err := p.Upload(ctx, strings.NewReader("x"), name, ""); err == nil {
			t.Errorf("Upload(%q) 应拒绝非法文件名", name)
		}
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr bool
	}{
		{name: "默认本地驱动", values: map[string]interface{}{config.KeyUploadDir: t.TempDir()}},
		{name: "S3 缺少存储桶", values: map[string]interface{}{config.KeyUploadDriver: "s3"}, wantErr: true},
		{name: "OSS 缺少配置", values: map[string]interface{}{config.KeyUploadDriver: "oss"}, wantErr: true},
		{name: "未知驱动", values: map[string]interface{}{config.KeyUploadDriver: "ftp"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(config.NewFromMap(tt.values))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloudProviderPublicURL(t *testing.T) {
	s3p, err := NewAWSS3Provider(S3Options{Region: "ap-east-1", Bucket: "blog", AccessKey: "ak", SecretKey: "sk"})
	if err != nil {
		t.Fatalf("NewAWSS3Provider() error = %v", err)
	}
	custom, err := NewAWSS3Provider(S3Options{Bucket: "blog", AccessKey: "ak", SecretKey: "sk",
		Endpoint: "http://minio:9000", PublicURL: "https://cdn.example.com/"})
	if err != nil {
		t.Fatalf("NewAWSS3Provider(自定义 endpoint) error = %v", err)
	}
	ossp, err := NewAliOSSProvider(OSSOptions{Endpoint: "https://oss-cn-shanghai.aliyuncs.com", Bucket: "blog", AccessKey: "ak", SecretKey: "sk"})
	if err != nil {
		t.Fatalf("NewAliOSSProvider() error = %v", err)
	}

	tests := []struct {
		name     string
		provider IStorageProvider
		want     string
	}{
		{name: "S3 默认域名", provider: s3p, want: "https://blog.s3.ap-east-1.amazonaws.com/uploads/a.png"},
		{name: "S3 公开地址", provider: custom, want: "https://cdn.example.com/uploads/a.png"},
		{name: "OSS 默认域名", provider: ossp, want: "https://blog.oss-cn-shanghai.aliyuncs.com/uploads/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.PublicURL("a.png"); got != tt.want {
				t.Errorf("PublicURL() = %s, want %s", got, tt.want)
			}
			// 非法文件名在访问网络之前就被拒绝
			if _, err := tt.provider.Upload(context.Background(), strings.NewReader("x"), "../a.png", ""); err == nil {
				t.Error("Upload() 应拒绝非法文件名")
			}
		})
	}
}
