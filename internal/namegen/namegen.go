// Package namegen 从记录字段确定性地生成目标文件名。
//
// 规则（固定）：
// - 每个字段独立清洗：去首尾空白；非法文件名字符替换为破折号；删除内部空白；压缩连续破折号
// - 清洗后的字段按给定顺序用 "-" 拼接，固定扩展名 .jpg
// - 去掉开头的破折号；紧邻扩展名前的破折号序列压缩为空（"...--.jpg" -> "....jpg"）
//
// 纯函数：无 I/O、无共享状态，相同输入产出相同结果。
package namegen

import (
	"strings"
	"unicode"
)

// Ext 是输出文件的固定扩展名。
const Ext = ".jpg"

// Sanitize 清洗单个字段。空/缺失字段清洗结果为空串。
func Sanitize(field string) string {
	s := strings.TrimSpace(field)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(`\/:*?"<>|`, r):
			b.WriteRune('-')
		case unicode.IsSpace(r):
			// 内部空白直接删除（不是替换为分隔符）。
		default:
			b.WriteRune(r)
		}
	}
	return collapseDashes(b.String())
}

// Build 按顺序拼接清洗后的字段并返回目标文件名。
//
// 缺失字段清洗为空串后，由压缩破折号的流程保证不会产生重复分隔符。
func Build(fields []string) string {
	cleaned := make([]string, 0, len(fields))
	for _, f := range fields {
		cleaned = append(cleaned, Sanitize(f))
	}
	name := collapseDashes(strings.Join(cleaned, "-")) + Ext

	name = strings.TrimLeft(name, "-")
	// 扩展名前残留的破折号序列压缩为空。
	if i := strings.LastIndex(name, Ext); i > 0 {
		name = strings.TrimRight(name[:i], "-") + Ext
	}
	return name
}

// StripQuery 去除 URL 中的查询参数（第一个 '?' 及之后的内容）。
// 幂等：对已去除的 URL 再次调用是 no-op。
func StripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
