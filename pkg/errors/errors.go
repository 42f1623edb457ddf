package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrUploadTooLarge 上传文件超过大小限制
	ErrUploadTooLarge = errors.New("上传文件过大")
)
