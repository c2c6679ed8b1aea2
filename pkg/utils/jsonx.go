package utils

import (
	"encoding/json"
	"strings"
)

// ==================== AI JSON 解析 ====================

// ParseOutcome AI 返回解析结果
// 解析失败不抛错吞掉，而是返回带原始文本的显式分支，由调用方决定兜底策略
type ParseOutcome struct {
	OK  bool
	Raw string // 清洗后的原始文本（失败时用于排查/落库）
	Err error
}

// StripCodeFence 清洗 AI 返回里可能存在的 markdown 代码围栏 (```json ... ```)
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseAIJSON 清洗围栏后反序列化到 v
// 返回 ParseOutcome 而非裸 error，使兜底替换成为调用方代码里可见的分支
func ParseAIJSON(raw string, v interface{}) ParseOutcome {
	cleaned := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return ParseOutcome{OK: false, Raw: cleaned, Err: err}
	}
	return ParseOutcome{OK: true, Raw: cleaned}
}
