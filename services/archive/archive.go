// Package archive stores the normalized page text and the candidates
// extracted from it, so extraction runs can be audited later.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Record is one archived extraction
type Record struct {
	RestaurantID string          `json:"restaurant_id"`
	URL          string          `json:"url"`
	Source       string          `json:"source"`
	Outcome      string          `json:"outcome"`
	Text         string          `json:"text,omitempty"`
	ImageLink    string          `json:"image_link,omitempty"`
	Candidates   json.RawMessage `json:"candidates"`
	ScrapedAt    time.Time       `json:"scraped_at"`
}

// Archiver persists records
type Archiver interface {
	Put(ctx context.Context, rec Record) error
}

// ObjectPutter is the subset of the S3 client the archive needs
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one JSON object per record
type S3Archiver struct {
	client ObjectPutter
	bucket string
}

var _ Archiver = (*S3Archiver)(nil)

// NewS3Archiver loads the default AWS credential chain for region
func NewS3Archiver(ctx context.Context, region, bucket string) (*S3Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3ArchiverWithClient(s3.NewFromConfig(cfg), bucket), nil
}

func NewS3ArchiverWithClient(client ObjectPutter, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

func (a *S3Archiver) Put(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ObjectKey(rec)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("unable to upload %s to S3: %w", ObjectKey(rec), err)
	}
	return nil
}

// ObjectKey lays records out as <restaurant>/<date>/<time>-<source>.json
func ObjectKey(rec Record) string {
	ts := rec.ScrapedAt.UTC()
	return strings.Join([]string{
		rec.RestaurantID,
		ts.Format("2006-01-02"),
		ts.Format("150405.000") + "-" + rec.Source + ".json",
	}, "/")
}
