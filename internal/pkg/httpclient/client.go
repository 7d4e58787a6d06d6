// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"campusmall/internal/pkg/nacos"
)

// Client 是一个可追踪的 HTTP 客户端，目标地址通过 Nacos 服务发现解析
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	Nacos      *nacos.Client
}

// NewClient 创建一个新的客户端实例
// 不设置全局 Timeout，超时完全由每次请求传入的 context 控制
func NewClient(tracer trace.Tracer, nacosClient *nacos.Client) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		Nacos:      nacosClient,
	}
}

// CallService 对指定服务发起一次 POST 调用，忽略响应体
func (c *Client) CallService(ctx context.Context, serviceName, path string, params url.Values) error {
	return c.do(ctx, serviceName, path, params, nil)
}

// CallServiceJSON 对指定服务发起一次 POST 调用，并将 JSON 响应体解码到 out
func (c *Client) CallServiceJSON(ctx context.Context, serviceName, path string, params url.Values, out interface{}) error {
	return c.do(ctx, serviceName, path, params, out)
}

func (c *Client) do(ctx context.Context, serviceName, path string, params url.Values, out interface{}) error {
	ctx, span := c.Tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ip, port, err := c.Nacos.DiscoverServiceInstance(serviceName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	downstreamURL := url.URL{
		Scheme:   "http",
		Host:     fmt.Sprintf("%s:%d", ip, port),
		Path:     path,
		RawQuery: params.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, downstreamURL.String(), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.String("http.url", downstreamURL.String()),
		attribute.String("http.method", http.MethodPost),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("service %s%s returned status %s", serviceName, path, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to decode response from %s%s: %w", serviceName, path, err)
		}
	}
	return nil
}
