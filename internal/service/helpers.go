package service

import (
	"errors"
	"time"
	"unicode"

	"irufoodflow/backend/internal/model"
)

// ErrNoPermission 通用越权错误
var ErrNoPermission = errors.New("无权操作")

const timeLayout = time.RFC3339

// turkishCase 大小写转换使用土耳其语规则（i ↔ İ，ı ↔ I）
var turkishCase = unicode.TurkishCase

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

// isPrivileged 管理员与系主任可查看全部教师数据
func isPrivileged(role string) bool {
	return role == model.RoleAdmin || role == model.RoleDeptHead
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
