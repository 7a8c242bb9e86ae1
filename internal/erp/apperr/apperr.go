// Package apperr 定义服务层的错误分类。
// 服务层统一用 fmt.Errorf("...: %w", ...) 包装这里的哨兵，
// handler 层通过 errors.Is / errors.As 映射为响应码，内部细节不外泄。
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation 入参校验失败，调用方可修正后重试，未发生任何变更
	ErrValidation = errors.New("参数校验失败")

	// ErrNotFound 目标记录不存在，未发生任何变更
	ErrNotFound = errors.New("记录不存在")

	// ErrConflict 并发冲突（如扣减时可用库存不足），区别于计划期检测到的短缺
	ErrConflict = errors.New("并发冲突")
)

// Validationf 构造一条校验错误
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf 构造一条未找到错误
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Conflictf 构造一条冲突错误
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConflict}, args...)...)
}

// CyclicBOMError BOM中存在环，展开立即中止，不落任何数据
type CyclicBOMError struct {
	ProductID string   // 被重复访问的产品
	Path      []string // 当前递归路径上的产品ID
}

func (e *CyclicBOMError) Error() string {
	return fmt.Sprintf("BOM存在循环引用: 产品 %s, 路径 %s", e.ProductID, strings.Join(e.Path, " -> "))
}
