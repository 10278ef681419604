package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zhengshuai-xiao/chunkshare/internal"
)

// NewS3Client builds an S3 client from conf. Static credentials are used
// when both keys are set, otherwise the default AWS chain applies. A custom
// endpoint (MinIO, Ceph) must include the scheme, e.g. http://127.0.0.1:9000.
func NewS3Client(ctx context.Context, conf internal.S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conf.Region),
		config.WithLogger(internal.GetLogger("chunkshare_s3")),
	}
	if conf.AccessKey != "" && conf.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conf.PathStyle
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	})
	logger.Infof("S3 client ready: region=%s endpoint=%q path-style=%v", conf.Region, conf.Endpoint, conf.PathStyle)
	return client, nil
}
