package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ==================== 配置 ====================

type StorageConfig struct {
	Provider string // s3 | local

	// S3
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // 兼容 MinIO 等自建对象存储

	// 本地
	LocalDir string
	BaseURL  string
}

// ==================== 接口定义 ====================

// StorageService 导出文件存储
type StorageService interface {
	// Upload 上传文件并返回可访问地址
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// NewStorageService 按配置创建存储实现，默认本地
func NewStorageService(cfg *StorageConfig) (StorageService, error) {
	switch cfg.Provider {
	case "s3":
		return newS3Storage(cfg)
	default:
		return newLocalStorage(cfg)
	}
}

// ==================== S3 实现 ====================

type s3Storage struct {
	client *s3.Client
	bucket string
	region string
}

func newS3Storage(cfg *StorageConfig) (*s3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("缺少 S3_BUCKET 配置")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

func (s *s3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传 S3 失败: %v", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// ==================== 本地实现 ====================

type localStorage struct {
	dir     string
	baseURL string
}

func newLocalStorage(cfg *StorageConfig) (*localStorage, error) {
	dir := cfg.LocalDir
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建导出目录失败: %v", err)
	}
	return &localStorage{dir: dir, baseURL: cfg.BaseURL}, nil
}

func (s *localStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("创建导出目录失败: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("写入导出文件失败: %v", err)
	}
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key), nil
	}
	return path, nil
}

// ExportKey 导出文件对象键，按日期归档
func ExportKey(prefix string, now time.Time) string {
	return fmt.Sprintf("exports/%s/%s_%s.csv", now.Format("2006-01"), prefix, now.Format("20060102_150405"))
}
