// internal/service/job/infrastructure/adapter/system_job_client.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"campusmall/internal/pkg/constants"
	"campusmall/internal/pkg/degrade"
	"campusmall/internal/pkg/httpclient"
)

type statisticsResponse struct {
	Success bool `json:"success"`
}

// SystemJobClient 是 job-service 调用 system-service 的远程客户端
type SystemJobClient struct {
	client *httpclient.Client
}

func NewSystemJobClient(client *httpclient.Client) *SystemJobClient {
	return &SystemJobClient{client: client}
}

// CleanSystemLogs 清理保留期之外的系统日志，返回清理条数
func (c *SystemJobClient) CleanSystemLogs(ctx context.Context, retentionDays int) int {
	return degrade.Invoke(ctx, constants.SystemService, func(ctx context.Context) (int, error) {
		params := url.Values{}
		params.Set("retentionDays", strconv.Itoa(retentionDays))
		var resp countResponse
		if err := c.client.CallServiceJSON(ctx, constants.SystemService, constants.SystemCleanLogsPath, params, &resp); err != nil {
			return 0, err
		}
		return resp.Count, nil
	}, 0)
}

// ExecuteStatistics 触发指定日期的经营数据统计，返回是否执行成功
// date 格式为 2006-01-02
func (c *SystemJobClient) ExecuteStatistics(ctx context.Context, date string) bool {
	return degrade.Invoke(ctx, constants.SystemService, func(ctx context.Context) (bool, error) {
		params := url.Values{}
		params.Set("date", date)
		var resp statisticsResponse
		if err := c.client.CallServiceJSON(ctx, constants.SystemService, constants.SystemStatisticsPath, params, &resp); err != nil {
			return false, err
		}
		return resp.Success, nil
	}, false)
}
