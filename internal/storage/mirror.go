// Package storage 把路由后的遥测记录镜像到 Redis，
// 供遥测大屏等外部消费者订阅。镜像是可选功能，地面站必须能在
// 没有 Redis 的环境下正常运行。
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

// backlogLimit 每个遥测源保留的最近记录条数
const backlogLimit = 1000

type Mirror struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
}

func NewMirror(addr, password, channel string, db, poolSize int, log *logrus.Logger) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	log.Info("Redis连接成功")

	return &Mirror{
		client:  client,
		channel: channel,
		log:     log,
	}, nil
}

// Publish 发布一条遥测记录：Pub/Sub 广播 + 有界 List 备份
func (m *Mirror) Publish(ctx context.Context, record protocol.TelemetryRecord) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化遥测记录失败: %w", err)
	}

	if err := m.client.Publish(ctx, m.channel, jsonData).Err(); err != nil {
		return fmt.Errorf("发布遥测记录失败: %w", err)
	}

	title := record.Title
	if title == "" {
		title = "Unknown"
	}
	listKey := fmt.Sprintf("cansat:%s:frames", title)
	if err := m.client.LPush(ctx, listKey, jsonData).Err(); err != nil {
		m.log.Warnf("保存到List失败: %v", err)
		return nil
	}

	// 限制List长度（保留最近 backlogLimit 条）
	m.client.LTrim(ctx, listKey, 0, backlogLimit-1)

	return nil
}

// Close 关闭连接
func (m *Mirror) Close() error {
	return m.client.Close()
}
