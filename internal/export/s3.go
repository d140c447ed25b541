// Package export archives bracket and classification snapshots as JSON
// objects in an S3 compatible bucket, so results outlive the arena server.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/AdamBeresnev/robo-arena/internal/report"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// ObjectPutter is the part of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Exporter struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
}

func New(client ObjectPutter, bucket, publicBaseURL string) *Exporter {
	return &Exporter{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

// NewS3 builds an exporter from configuration. A custom endpoint switches
// to path style addressing, which MinIO and R2 expect.
func NewS3(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("export bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func BracketKey(competitionID string) string {
	return "competitions/" + competitionID + "/bracket.json"
}

func ClassificationKey(competitionID string) string {
	return "competitions/" + competitionID + "/classification.json"
}

func (e *Exporter) PublishBracket(ctx context.Context, view report.BracketView) error {
	return e.put(ctx, BracketKey(view.CompetitionID.String()), view)
}

func (e *Exporter) PublishClassification(ctx context.Context, view report.ClassificationView) error {
	return e.put(ctx, ClassificationKey(view.CompetitionID.String()), view)
}

func (e *Exporter) put(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if u := e.PublicURL(key); u != "" {
		slog.Info("Snapshot exported", "key", key, "url", u)
	} else {
		slog.Debug("Snapshot exported", "key", key)
	}
	return nil
}

// PublicURL is where a snapshot can be downloaded, or "" without a public
// base URL.
func (e *Exporter) PublicURL(key string) string {
	if e.publicBaseURL == "" {
		return ""
	}
	u, err := url.JoinPath(e.publicBaseURL, key)
	if err != nil {
		return ""
	}
	return u
}
