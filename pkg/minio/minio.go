package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ShareServer/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var global *MinIOClient

// MinIOClient MinIO 客户端封装（本服务只做图片引用的读取解析，上传由上传服务负责）。
type MinIOClient struct {
	client *minio.Client
	config config.MinIOConfig
}

// Client 返回全局 MinIO 客户端（未初始化时为 nil）
func Client() *MinIOClient {
	return global
}

// ReplaceGlobal 设置全局 MinIO 客户端
func ReplaceGlobal(c *MinIOClient) {
	global = c
}

// Build 基于配置创建 MinIO 客户端
func Build(cfg config.MinIOConfig) (*MinIOClient, error) {
	// 1. 验证必填配置
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is empty")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" {
		return nil, errors.New("minio accessKeyId is empty")
	}
	if strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, errors.New("minio secretAccessKey is empty")
	}
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("minio bucketName is empty")
	}

	// 2. 创建 MinIO 客户端
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOClient{client: minioClient, config: cfg}, nil
}

// PresignGetURL 为对象键生成预签名 GET URL，供客户端直接拉取图片。
func (c *MinIOClient) PresignGetURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", errors.New("object key is empty")
	}

	u, err := c.client.PresignedGetObject(ctx, c.config.BucketName, objectKey, c.config.PresignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectKey, err)
	}
	return u.String(), nil
}

// PresignGetURLs 批量解析对象键；单个失败降级为空串，不阻塞整页响应。
func (c *MinIOClient) PresignGetURLs(ctx context.Context, objectKeys []string) []string {
	urls := make([]string, 0, len(objectKeys))
	for _, key := range objectKeys {
		u, err := c.PresignGetURL(ctx, key)
		if err != nil {
			urls = append(urls, "")
			continue
		}
		urls = append(urls, u)
	}
	return urls
}
