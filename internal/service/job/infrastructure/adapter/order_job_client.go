// internal/service/job/infrastructure/adapter/order_job_client.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/degrade"
	"campusmall/internal/pkg/httpclient"
)

// countResponse 是各内部对账接口的统一响应体
type countResponse struct {
	Count int `json:"count"`
}

// OrderJobClient 是 job-service 调用 order-service 的远程客户端
// 每个方法都内置降级兜底：对端不可用时返回 0 并告警，调度循环永不被阻断
//
// 已知取舍：返回 0 无法区分"确实没有超时订单"和"订单服务不可用"，
// 区分依赖降级告警日志与 campusmall_degraded_calls_total 指标
type OrderJobClient struct {
	client *httpclient.Client
}

func NewOrderJobClient(client *httpclient.Client) *OrderJobClient {
	return &OrderJobClient{client: client}
}

// CancelTimeoutOrders 触发超时未支付订单取消，返回取消数量
func (c *OrderJobClient) CancelTimeoutOrders(ctx context.Context, minutes int) int {
	return c.sweepCall(ctx, constants.OrderCancelTimeoutPath, "minutes", minutes)
}

// ConfirmTimeoutOrders 触发超时未确认订单自动完成，返回确认数量
func (c *OrderJobClient) ConfirmTimeoutOrders(ctx context.Context, days int) int {
	return c.sweepCall(ctx, constants.OrderConfirmTimeoutPath, "days", days)
}

// ReleaseTimeoutLockers 触发超时取餐柜释放，返回释放数量
func (c *OrderJobClient) ReleaseTimeoutLockers(ctx context.Context, hours int) int {
	return c.sweepCall(ctx, constants.OrderReleaseLockersPath, "hours", hours)
}

func (c *OrderJobClient) sweepCall(ctx context.Context, path, param string, value int) int {
	return degrade.Invoke(ctx, constants.OrderService, func(ctx context.Context) (int, error) {
		params := url.Values{}
		params.Set(param, strconv.Itoa(value))
		var resp countResponse
		if err := c.client.CallServiceJSON(ctx, constants.OrderService, path, params, &resp); err != nil {
			return 0, err
		}
		return resp.Count, nil
	}, 0)
}
