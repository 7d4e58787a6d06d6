// internal/service/order/domain/errors.go
package domain

import "fmt"

// 领域错误码，接口层据此映射响应，绝不向调用方抛裸异常
const (
	CodeOrderStatusError       = "ORDER_STATUS_ERROR"       // 非法状态流转
	CodeOrderNotFound          = "ORDER_NOT_FOUND"          // 订单不存在
	CodeOrderStockInsufficient = "ORDER_STOCK_INSUFFICIENT" // 库存不足
	CodeOrderConcurrentModify  = "ORDER_CONCURRENT_MODIFY"  // 乐观锁版本冲突
	CodeOrderSideEffectFailed  = "ORDER_SIDE_EFFECT_FAILED" // 流转附带的资源操作硬失败
)

// DomainError 是所有订单领域错误的载体
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is 支持 errors.Is 按错误码比较
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewOrderStatusError 构造一个非法流转错误
func NewOrderStatusError(from Status, trigger Trigger) *DomainError {
	return &DomainError{
		Code:    CodeOrderStatusError,
		Message: fmt.Sprintf("trigger %s is not allowed in status %d", trigger, from),
	}
}

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = &DomainError{Code: CodeOrderNotFound, Message: "order does not exist"}

// ErrConcurrentModify 两个并发触发源（如用户操作与对账扫描）基于同一旧版本更新时返回
var ErrConcurrentModify = &DomainError{Code: CodeOrderConcurrentModify, Message: "order was modified concurrently, please retry"}

// ErrStockInsufficient 库存不足
var ErrStockInsufficient = &DomainError{Code: CodeOrderStockInsufficient, Message: "insufficient stock"}

// NewSideEffectError 资源释放等副作用硬失败时返回，流转被中止
func NewSideEffectError(cause error) *DomainError {
	return &DomainError{
		Code:    CodeOrderSideEffectFailed,
		Message: fmt.Sprintf("transition side effect failed: %v", cause),
	}
}
