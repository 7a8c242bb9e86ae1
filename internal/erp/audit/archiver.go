// Package audit 将BOM展开结果归档到对象存储，作为只追加的审计留痕
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver 展开结果归档器
type Archiver struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewArchiver 创建归档器并确保bucket存在
func NewArchiver(client *minio.Client, bucket string, logger *zap.Logger) (*Archiver, error) {
	if client == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("检查bucket失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建bucket失败: %w", err)
		}
	}
	return &Archiver{client: client, bucket: bucket, logger: logger}, nil
}

// ArchiveExplosion 归档一次展开结果，失败只记日志不返回错误
func (a *Archiver) ArchiveExplosion(ctx context.Context, productID string, result interface{}) {
	if a == nil {
		return
	}
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		a.logger.Warn("展开结果序列化失败", zap.String("product_id", productID), zap.Error(err))
		return
	}
	key := fmt.Sprintf("explosions/%s/%s-%s.json",
		time.Now().Format("2006/01/02"), productID, uuid.New().String()[:8])

	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		a.logger.Warn("展开结果归档失败",
			zap.String("product_id", productID),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	a.logger.Debug("展开结果已归档", zap.String("key", key))
}
