// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/httpclient"
	"campusmall/internal/service/order/domain/port"
)

// InventoryHTTPAdapter 实现了 port.InventoryService，通过 HTTP 调用 product-service
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

var _ port.InventoryService = (*InventoryHTTPAdapter)(nil)

// releaseStockResponse 是 product-service 释放库存接口的响应体
// code == 0 表示释放成功，其它值为业务拒绝
type releaseStockResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ReleaseStock 释放订单占用的库存
// 传输层错误原样返回，由调用方走降级；业务拒绝返回 ok=false
func (a *InventoryHTTPAdapter) ReleaseStock(ctx context.Context, orderNo string) (bool, error) {
	params := url.Values{}
	params.Set("orderNo", orderNo)

	var resp releaseStockResponse
	if err := a.client.CallServiceJSON(ctx, constants.ProductService, constants.ProductReleaseStockPath, params, &resp); err != nil {
		return false, err
	}
	return resp.Code == 0, nil
}

type stockWarningResponse struct {
	Count int `json:"count"`
}

// CheckStockWarning 返回库存低于阈值的商品数
func (a *InventoryHTTPAdapter) CheckStockWarning(ctx context.Context, threshold int) (int, error) {
	params := url.Values{}
	params.Set("threshold", strconv.Itoa(threshold))

	var resp stockWarningResponse
	if err := a.client.CallServiceJSON(ctx, constants.ProductService, constants.ProductStockWarningPath, params, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
