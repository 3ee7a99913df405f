package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"

	"github.com/HaPhanBaoMinh/clusterrings/internal/config"
	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

type getObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads a stats document from an S3 (or S3 compatible) bucket.
type Source struct {
	client getObjectAPI
	bucket string
	key    string
}

// ParseURI splits s3://bucket/key.
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 uri %q: %w", uri, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: want s3://bucket/key", uri)
	}
	return u.Host, key, nil
}

// New builds a client from the default AWS credential chain.
func New(ctx context.Context, cfg config.S3) (*Source, error) {
	bucket, key, err := ParseURI(cfg.URI)
	if err != nil {
		return nil, err
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &Source{client: client, bucket: bucket, key: key}, nil
}

func (s *Source) Name() string { return "s3://" + s.bucket + "/" + s.key }

func (s *Source) Load(ctx context.Context) (*domain.ClusterSnapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get %s: %w", s.Name(), err)
	}
	defer out.Body.Close()

	snap, err := domain.DecodeSnapshot(out.Body)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", s.Name(), err)
	}
	log.WithFields(log.Fields{"bucket": s.bucket, "key": s.key}).Debug("snapshot downloaded")
	return snap, nil
}
