/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 15:57:23
 * @LastEditTime: 2025-09-16 10:41:52
 * @LastEditors: 安知鱼
 */
// internal/pkg/parser/markdown.go
package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/anzhiyu-c/blog-admin/internal/pkg/strutil"
)

var mdParser = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(), // 原始 HTML 交给 bluemonday 处理
	),
)

// MarkdownToHTML 将 Markdown 字符串转换为安全的 HTML 字符串
func MarkdownToHTML(mdContent string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(mdContent), &buf); err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// Summarize 从 Markdown 正文中提取纯文本摘要，超出 maxRunes 时截断
func Summarize(mdContent string, maxRunes int) string {
	rendered, err := MarkdownToHTML(mdContent)
	if err != nil {
		rendered = mdContent
	}
	text := strings.Join(strings.Fields(StripHTML(rendered)), " ")
	return strutil.Truncate(text, maxRunes)
}
