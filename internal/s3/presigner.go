package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"menteam-auth/internal/config"
)

const uploadURLExpiry = 15 * time.Minute

type FilePresigner struct {
	client   *s3.PresignClient
	endpoint string
	bucket   string
}

func NewFilePresigner(ctx context.Context, cfg config.S3Config) (*FilePresigner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &FilePresigner{
		client:   s3.NewPresignClient(client),
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		bucket:   cfg.BucketName,
	}, nil
}

// PresignUpload returns a PUT URL for objectKey valid for 15 minutes.
func (p *FilePresigner) PresignUpload(ctx context.Context, objectKey string) (string, error) {
	request, err := p.client.PresignPutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(objectKey),
		},
		func(opts *s3.PresignOptions) {
			opts.Expires = uploadURLExpiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}

	return request.URL, nil
}

// ObjectURL is the public location of objectKey once uploaded.
func (p *FilePresigner) ObjectURL(objectKey string) string {
	return p.endpoint + "/" + p.bucket + "/" + objectKey
}
