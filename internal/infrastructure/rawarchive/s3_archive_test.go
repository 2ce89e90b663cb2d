package rawarchive

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
)

type putCall struct {
	key      string
	body     string
	metadata map[string]string
}

type fakeS3 struct {
	mu    sync.Mutex
	calls []putCall
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{key: aws.ToString(params.Key), body: string(body), metadata: params.Metadata})
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	t.Parallel()

	if _, err := NewS3Archive(&fakeS3{}, S3Config{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestS3Archive_UpsertManyWritesOneObjectPerPayload(t *testing.T) {
	t.Parallel()

	api := &fakeS3{}
	archive, err := NewS3Archive(api, S3Config{Bucket: "raw", Prefix: "/payloads/"})
	if err != nil {
		t.Fatalf("new archive: %v", err)
	}

	fetched := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []rawdata.Payload{
		{Source: "espn", EntityType: "teams", EntityKey: "1/2022/teams", LeagueID: "1", Season: 2022, PayloadJSON: []byte(`{"teams":[]}`), FetchedAt: fetched},
		{Source: "espn", EntityType: "draft", EntityKey: "1/2022/draft", LeagueID: "1", Season: 2022, PayloadJSON: []byte(`{"draft":{}}`), PayloadHash: "abc", FetchedAt: fetched},
	}
	if err := archive.UpsertMany(context.Background(), items); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if len(api.calls) != 2 {
		t.Fatalf("expected 2 puts, got %d", len(api.calls))
	}
	sort.Slice(api.calls, func(i, j int) bool { return api.calls[i].key < api.calls[j].key })

	if api.calls[0].key != "payloads/espn/1/2022/draft.json" {
		t.Fatalf("unexpected key: %s", api.calls[0].key)
	}
	if api.calls[0].metadata["payload-hash"] != "abc" {
		t.Fatalf("expected supplied hash, got %v", api.calls[0].metadata)
	}
	if api.calls[1].body != `{"teams":[]}` {
		t.Fatalf("unexpected body: %s", api.calls[1].body)
	}
	if api.calls[1].metadata["payload-hash"] != rawdata.HashPayload([]byte(`{"teams":[]}`)) {
		t.Fatalf("expected computed hash, got %v", api.calls[1].metadata)
	}
	if api.calls[1].metadata["fetched-at"] != "2022-03-01T12:00:00Z" {
		t.Fatalf("unexpected fetched-at: %v", api.calls[1].metadata)
	}
}

func TestS3Archive_UpsertManyReturnsPutError(t *testing.T) {
	t.Parallel()

	archive, _ := NewS3Archive(&fakeS3{err: errors.New("access denied")}, S3Config{Bucket: "raw"})
	err := archive.UpsertMany(context.Background(), []rawdata.Payload{{Source: "yahoo", EntityType: "teams", EntityKey: "k"}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestS3Archive_ObjectKeyWithoutPrefix(t *testing.T) {
	t.Parallel()

	archive, _ := NewS3Archive(&fakeS3{}, S3Config{Bucket: "raw"})
	got := archive.ObjectKey(rawdata.Payload{Source: "yahoo", EntityType: "players", EntityKey: "7788/2022/players"})
	if got != "yahoo/7788/2022/players.json" {
		t.Fatalf("unexpected key: %s", got)
	}
}
