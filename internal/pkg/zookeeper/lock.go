// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/campusmall/sweep_locks"

// Conn 封装了 ZooKeeper 连接
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接
func Connect(servers []string) (*Conn, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}
	return &Conn{Conn: conn}, nil
}

// SweepLock 是对账扫描用的跨实例互斥锁
// 同一个任务名同一时刻只允许一个 job-service 实例持有；
// 抢不到锁的实例直接跳过本轮扫描，等待下一个调度周期，而不是阻塞等待
type SweepLock struct {
	conn     *Conn
	nodePath string
	held     bool
}

// NewSweepLock 创建一个以任务名为粒度的扫描锁
func NewSweepLock(conn *Conn, jobName string) (*SweepLock, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}
	return &SweepLock{
		conn:     conn,
		nodePath: lockRoot + "/" + jobName,
	}, nil
}

// TryLock 尝试获取锁，返回是否成功
// 通过创建临时节点实现：实例崩溃后会话过期，锁自动释放
func (l *SweepLock) TryLock() (bool, error) {
	_, err := l.conn.Create(l.nodePath, []byte(""), zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err == zk.ErrNodeExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create lock node %s: %w", l.nodePath, err)
	}
	l.held = true
	return true, nil
}

// Unlock 释放锁，释放一个未持有的锁是无害的空操作
func (l *SweepLock) Unlock() error {
	if !l.held {
		return nil
	}
	err := l.conn.Delete(l.nodePath, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node %s: %w", l.nodePath, err)
	}
	l.held = false
	return nil
}

// ensurePath 逐级创建持久节点
func ensurePath(conn *Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check path %s: %w", path, err)
	}
	if exists {
		return nil
	}
	// 父级可能也不存在，从根逐段建
	var cur string
	for _, seg := range splitPath(path) {
		cur = cur + "/" + seg
		_, err := conn.Create(cur, []byte(""), 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("failed to create path node %s: %w", cur, err)
		}
	}
	return nil
}

func splitPath(path string) []string {
	var segs []string
	var cur string
	for _, r := range path {
		if r == '/' {
			if cur != "" {
				segs = append(segs, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		segs = append(segs, cur)
	}
	return segs
}
