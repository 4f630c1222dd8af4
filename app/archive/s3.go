package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrDisabled = errors.New("receipt archive is disabled")

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores rendered receipt PDFs under receipts/<receipt_number>.pdf.
type S3Archive struct {
	bucket string
	client objectPutter
}

func NewS3Archive(ctx context.Context, cfg Config) (*S3Archive, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &S3Archive{}, nil
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Archive{bucket: cfg.Bucket, client: client}, nil
}

func (a *S3Archive) Enabled() bool {
	return a != nil && a.client != nil && a.bucket != ""
}

func (a *S3Archive) PutReceipt(ctx context.Context, receiptNumber string, pdf []byte) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}

	key := ReceiptKey(receiptNumber)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("put receipt %s: %w", key, err)
	}
	return key, nil
}

func ReceiptKey(receiptNumber string) string {
	return "receipts/" + strings.TrimSpace(receiptNumber) + ".pdf"
}
