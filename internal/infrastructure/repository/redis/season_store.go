package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

const defaultKeyPrefix = "league-season:"

// NewClient connects to redisURL and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type SeasonStoreConfig struct {
	KeyPrefix string
	Logger    *logging.Logger
	Now       func() time.Time
}

// SeasonStore keeps one hash per season key. Upsert replaces the hash inside
// MULTI/EXEC; patch only sets the present fields.
type SeasonStore struct {
	client goredis.UniversalClient
	prefix string
	logger *logging.Logger
	now    func() time.Time
}

func NewSeasonStore(client goredis.UniversalClient, cfg SeasonStoreConfig) *SeasonStore {
	prefix := cfg.KeyPrefix
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SeasonStore{client: client, prefix: prefix, logger: cfg.Logger, now: cfg.Now}
}

// HashKey is the redis key of a season hash.
func (s *SeasonStore) HashKey(key season.Key) string {
	return s.prefix + key.String()
}

func (s *SeasonStore) Write(ctx context.Context, record season.Record, mode season.WriteMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	attrs, err := record.EncodeAttributes()
	if err != nil {
		return fmt.Errorf("encode season %d: %w", record.Season, err)
	}

	fields := make(map[string]any, len(attrs)+1)
	for name, value := range attrs {
		fields[name] = value
	}
	fields["updatedAt"] = s.now().UTC().Format(time.RFC3339)

	hashKey := s.HashKey(record.Key())
	switch mode {
	case season.WriteUpsert:
		_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, hashKey)
			pipe.HSet(ctx, hashKey, fields)
			return nil
		})
	case season.WritePatch:
		err = s.client.HSet(ctx, hashKey, fields).Err()
	}
	if err != nil {
		return fmt.Errorf("write season hash %s (%s): %w", hashKey, mode, err)
	}

	s.logger.DebugContext(ctx, "season hash written", "key", hashKey, "mode", string(mode))
	return nil
}
