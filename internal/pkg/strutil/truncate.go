/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-08 16:10:53
 * @LastEditTime: 2025-09-16 10:30:12
 * @LastEditors: 安知鱼
 */
package strutil

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate 按字符数截断 UTF-8 字符串，超出时追加省略号。maxRunes <= 0 时返回空串。
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:maxRunes]), isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
