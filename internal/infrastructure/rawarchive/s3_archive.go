package rawarchive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// PutObjectAPI is the subset of the S3 client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket      string
	Prefix      string
	Concurrency int
	Logger      *logging.Logger
}

// S3Archive writes raw payloads as objects keyed by entity, so a refetch of
// the same entity overwrites the previous object.
type S3Archive struct {
	client      PutObjectAPI
	bucket      string
	prefix      string
	concurrency int
	logger      *logging.Logger
}

func NewS3Archive(client PutObjectAPI, cfg S3Config) (*S3Archive, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("raw archive bucket is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &S3Archive{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      strings.Trim(cfg.Prefix, "/"),
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}, nil
}

// ObjectKey is "{prefix}/{source}/{entityKey}.json"; entity keys already
// carry league, season and endpoint.
func (a *S3Archive) ObjectKey(item rawdata.Payload) string {
	parts := []string{a.prefix, item.Source, item.EntityKey + ".json"}
	if a.prefix == "" {
		parts = parts[1:]
	}
	return path.Join(parts...)
}

func (a *S3Archive) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	p := pool.New().WithContext(ctx).WithMaxGoroutines(a.concurrency).WithCancelOnError()
	for _, item := range items {
		item := item
		p.Go(func(ctx context.Context) error {
			return a.put(ctx, item)
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("archive raw payloads: %w", err)
	}

	a.logger.DebugContext(ctx, "raw payloads archived", "bucket", a.bucket, "count", len(items))
	return nil
}

func (a *S3Archive) put(ctx context.Context, item rawdata.Payload) error {
	hash := item.PayloadHash
	if hash == "" {
		hash = rawdata.HashPayload(item.PayloadJSON)
	}
	fetchedAt := item.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	key := a.ObjectKey(item)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(item.PayloadJSON),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"payload-hash": hash,
			"league-id":    item.LeagueID,
			"season":       strconv.Itoa(item.Season),
			"fetched-at":   fetchedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
