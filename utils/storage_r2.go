package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

// R2Backend talks to Cloudflare R2 or any other S3-compatible store.
type R2Backend struct {
	s3           *s3.Client
	bucket       string
	prefix       string
	publicDomain string
	publicACL    bool
}

func NewR2Backend(ctx context.Context, cfg config.R2Config) (*R2Backend, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Endpoint == "" {
		return nil, errors.New("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}
	if cfg.PublicDomain == "" {
		return nil, errors.New("R2_PUBLIC_DOMAIN is required to build public attachment urls")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Backend{
		s3:           client,
		bucket:       cfg.Bucket,
		prefix:       cfg.Prefix,
		publicDomain: strings.TrimRight(cfg.PublicDomain, "/"),
		publicACL:    cfg.PublicACL,
	}, nil
}

func (r *R2Backend) Name() string { return string(BackendR2) }

func (r *R2Backend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	key := ObjectName(r.prefix, file.Name, time.Now())

	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(file.MimeType),
		CacheControl:  aws.String("public, max-age=86400"),
		Metadata:      map[string]string{"source-filename": url.QueryEscape(file.Name)},
	}
	// R2 has no object ACLs; plain S3 buckets may still need one.
	if r.publicACL {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := r.s3.PutObject(ctx, input); err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("upload %s: %w", file.Name, err)
	}

	u := r.PublicURL(key)
	return models.UploadedAttachment{
		ID:             key,
		URL:            u,
		SourceFilename: file.Name,
		WebContentLink: u,
	}, nil
}

// PublicURL joins the public domain and the object key.
func (r *R2Backend) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", r.publicDomain, key)
}
