// internal/service/job/infrastructure/adapter/product_job_client.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/degrade"
	"campusmall/internal/pkg/httpclient"
)

// ProductJobClient 是 job-service 调用 product-service 的远程客户端
type ProductJobClient struct {
	client *httpclient.Client
}

func NewProductJobClient(client *httpclient.Client) *ProductJobClient {
	return &ProductJobClient{client: client}
}

// CheckStockWarning 检查库存低于阈值的商品，返回告警商品数量
// 商品服务不可用时降级为 0
func (c *ProductJobClient) CheckStockWarning(ctx context.Context, threshold int) int {
	return degrade.Invoke(ctx, constants.ProductService, func(ctx context.Context) (int, error) {
		params := url.Values{}
		params.Set("threshold", strconv.Itoa(threshold))
		var resp countResponse
		if err := c.client.CallServiceJSON(ctx, constants.ProductService, constants.ProductStockWarningPath, params, &resp); err != nil {
			return 0, err
		}
		return resp.Count, nil
	}, 0)
}
