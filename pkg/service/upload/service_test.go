package upload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/anzhiyu-c/blog-admin/internal/infra/storage"
	"github.com/anzhiyu-c/blog-admin/pkg/config"
	"github.com/anzhiyu-c/blog-admin/pkg/constant"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newService(t *testing.T, maxMB int) (Service, string) {
	t.Helper()
	dir := t.TempDir()
	provider, err := storage.NewLocalProvider(dir, "http://localhost:8091")
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.NewFromMap(map[string]interface{}{config.KeyUploadMaxSize: maxMB})
	return NewService(provider, cfg), dir
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	svc, dir := newService(t, 1)

	resp, err := svc.UploadImage(ctx, bytes.NewReader(pngHeader), "Photo.PNG", int64(len(pngHeader)), "image/png")
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if !regexp.MustCompile(`^http://localhost:8091/uploads/[0-9a-f-]{36}\.png$`).MatchString(resp.URL) {
		t.Errorf("URL = %s", resp.URL)
	}
	if resp.Size != int64(len(pngHeader)) {
		t.Errorf("Size = %d", resp.Size)
	}
	if _, err := os.Stat(filepath.Join(dir, resp.Filename)); err != nil {
		t.Errorf("文件未写入磁盘: %v", err)
	}

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	if _, err := svc.UploadImage(ctx, strings.NewReader(svg), "logo.svg", int64(len(svg)), "image/svg+xml"); !errors.Is(err, constant.ErrInvalidFileType) {
		t.Errorf("SVG UploadImage() error = %v, want ErrInvalidFileType", err)
	}
}

func TestUploadImage_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, dir := newService(t, 1)
	big := append(append([]byte{}, pngHeader...), make([]byte, 2<<20)...)

	tests := []struct {
		name        string
		data        []byte
		filename    string
		size        int64
		contentType string
		wantErr     error
	}{
		{name: "非图片扩展名", data: pngHeader, filename: "a.exe", size: 10, contentType: "image/png", wantErr: constant.ErrInvalidFileType},
		{name: "无扩展名", data: pngHeader, filename: "a", size: 10, wantErr: constant.ErrInvalidFileType},
		{name: "非图片 Content-Type", data: pngHeader, filename: "a.png", size: 10, contentType: "text/html", wantErr: constant.ErrInvalidFileType},
		{name: "内容不是图片", data: []byte("<html>hi</html>"), filename: "a.png", size: 15, contentType: "image/png", wantErr: constant.ErrInvalidFileType},
		{name: "声明大小超限", data: pngHeader, filename: "a.png", size: 2 << 20, wantErr: constant.ErrFileTooLarge},
		{name: "实际大小超限", data: big, filename: "a.png", size: -1, contentType: "application/octet-stream", wantErr: constant.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadImage(ctx, bytes.NewReader(tt.data), tt.filename, tt.size, tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UploadImage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("失败的上传不应留下文件, got %d", len(entries))
	}
}
