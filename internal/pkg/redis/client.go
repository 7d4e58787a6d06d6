// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端，并维护一组按名字注册的 Lua 脚本
// 脚本在注册时预加载，调用时通过 EvalSha 执行，失败自动回退到 Eval
type Client struct {
	rdb *redis.Client

	mu      sync.RWMutex
	scripts map[string]*redis.Script
}

// NewClient 创建并连通一个 Redis 客户端
func NewClient(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Client{
		rdb:     rdb,
		scripts: make(map[string]*redis.Script),
	}, nil
}

// LoadScriptFromContent 按名字注册一段 Lua 脚本
func (c *Client) LoadScriptFromContent(name, content string) error {
	if content == "" {
		return fmt.Errorf("script %s has empty content", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[name] = redis.NewScript(content)
	return nil
}

// RunScript 执行一段已注册的脚本
func (c *Client) RunScript(ctx context.Context, name string, keys []string, args ...interface{}) (interface{}, error) {
	c.mu.RLock()
	script, ok := c.scripts[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("script %s is not registered", name)
	}
	return script.Run(ctx, c.rdb, keys, args...).Result()
}

// GetClient 暴露底层客户端，供需要 pipeline 等高级操作的调用方使用
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
