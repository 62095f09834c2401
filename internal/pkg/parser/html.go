/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 16:10:36
 * @LastEditTime: 2025-09-16 10:38:15
 * @LastEditors: 安知鱼
 */
package parser

import (
	stdhtml "html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripTagsPolicy = bluemonday.StripTagsPolicy()
	ugcPolicy       = newUGCPolicy()
	commentPolicy   = newCommentPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	return p
}

// 评论只保留少量行内格式
func newCommentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "code", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireNoFollowOnLinks(true)
	return p
}

// StripHTML 接受一个HTML字符串，返回一个去除了所有标签的纯文本字符串。
func StripHTML(htmlContent string) string {
	return stdhtml.UnescapeString(stripTagsPolicy.Sanitize(htmlContent))
}

// SanitizeComment 清理评论内容中的危险标签与属性
func SanitizeComment(content string) string {
	return strings.TrimSpace(commentPolicy.Sanitize(content))
}
