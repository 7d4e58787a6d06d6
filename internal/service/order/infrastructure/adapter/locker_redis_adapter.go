// internal/service/order/infrastructure/adapter/locker_redis_adapter.go
package adapter

import (
	"context"
	"fmt"

	"campusmall/internal/pkg/redis"
	"campusmall/internal/service/order/domain/port"
)

const (
	assignLockerScriptName  = "assign_locker"
	releaseLockerScriptName = "release_locker"

	lockerFreeSetKey = "locker:free"     // 空闲柜号集合
	lockerHoldHash   = "locker:holds"    // 柜号 -> 订单号
)

// LockerRedisAdapter 是 port.LockerService 的 Redis 实现
// 分配与释放都用 Lua 脚本保证原子性；释放是幂等的：
// 释放一个已在空闲集合里的柜子只是重复 SADD，结果不变
type LockerRedisAdapter struct {
	redisClient *redis.Client
}

// NewLockerRedisAdapter 创建适配器并预加载 Lua 脚本
func NewLockerRedisAdapter(redisClient *redis.Client) (*LockerRedisAdapter, error) {
	if err := redisClient.LoadScriptFromContent(assignLockerScriptName, assignLockerScript); err != nil {
		return nil, fmt.Errorf("failed to load assign locker script: %w", err)
	}
	if err := redisClient.LoadScriptFromContent(releaseLockerScriptName, releaseLockerScript); err != nil {
		return nil, fmt.Errorf("failed to load release locker script: %w", err)
	}
	return &LockerRedisAdapter{redisClient: redisClient}, nil
}

var _ port.LockerService = (*LockerRedisAdapter)(nil)

// Assign 从空闲集合里取出一个柜子分配给订单
func (a *LockerRedisAdapter) Assign(ctx context.Context, orderNo string) (string, error) {
	result, err := a.redisClient.RunScript(ctx, assignLockerScriptName,
		[]string{lockerFreeSetKey, lockerHoldHash}, orderNo)
	if err != nil {
		return "", fmt.Errorf("locker adapter failed to run assign script: %w", err)
	}
	code, ok := result.(string)
	if !ok || code == "" {
		return "", fmt.Errorf("no free locker available for order %s", orderNo)
	}
	return code, nil
}

// Release 把柜子归还到空闲集合，已空闲的柜子释放为空操作
func (a *LockerRedisAdapter) Release(ctx context.Context, lockerCode string) error {
	if lockerCode == "" {
		return nil
	}
	_, err := a.redisClient.RunScript(ctx, releaseLockerScriptName,
		[]string{lockerFreeSetKey, lockerHoldHash}, lockerCode)
	if err != nil {
		return fmt.Errorf("locker adapter failed to run release script: %w", err)
	}
	return nil
}

// PrepareLockers (运维和测试用) 初始化空闲柜号集合
func (a *LockerRedisAdapter) PrepareLockers(ctx context.Context, codes []string) error {
	pipe := a.redisClient.GetClient().Pipeline()
	pipe.Del(ctx, lockerFreeSetKey, lockerHoldHash)
	for _, code := range codes {
		pipe.SAdd(ctx, lockerFreeSetKey, code)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare lockers: %w", err)
	}
	return nil
}

var assignLockerScript = `
-- KEYS[1]: 空闲柜号集合
-- KEYS[2]: 柜号 -> 订单号 哈希
-- ARGV[1]: 订单号

local code = redis.call('spop', KEYS[1])
if not code then
    return ''
end
redis.call('hset', KEYS[2], code, ARGV[1])
return code
`

var releaseLockerScript = `
-- KEYS[1]: 空闲柜号集合
-- KEYS[2]: 柜号 -> 订单号 哈希
-- ARGV[1]: 柜号

-- 无论柜子当前是否被占用，结束状态都是: 不在持有表、在空闲集合
-- 因此对同一柜号重复执行是幂等的
redis.call('hdel', KEYS[2], ARGV[1])
redis.call('sadd', KEYS[1], ARGV[1])
return 1
`
