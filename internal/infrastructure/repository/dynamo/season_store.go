package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

const (
	attrLeagueKey  = "leagueKey"
	attrLeagueYear = "leagueYear"
	attrUpdatedAt  = "updatedAt"
)

// API is the subset of *dynamodb.Client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type SeasonStoreConfig struct {
	Table  string
	Logger *logging.Logger
	Now    func() time.Time
}

// SeasonStore writes one item per (platform, league, season):
// partition leagueKey "{platform}#{leagueId}", sort leagueYear.
type SeasonStore struct {
	api    API
	table  string
	logger *logging.Logger
	now    func() time.Time
}

func NewSeasonStore(api API, cfg SeasonStoreConfig) *SeasonStore {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SeasonStore{
		api:    api,
		table:  strings.TrimSpace(cfg.Table),
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

func (s *SeasonStore) Write(ctx context.Context, record season.Record, mode season.WriteMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	attrs, err := record.EncodeAttributes()
	if err != nil {
		return fmt.Errorf("encode season %d: %w", record.Season, err)
	}
	key := record.Key()
	updatedAt := s.now().UTC().Format(time.RFC3339)

	switch mode {
	case season.WriteUpsert:
		item := itemKey(key)
		for name, value := range attrs {
			item[name] = &types.AttributeValueMemberS{Value: value}
		}
		item[attrUpdatedAt] = &types.AttributeValueMemberS{Value: updatedAt}

		if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.table),
			Item:      item,
		}); err != nil {
			return fmt.Errorf("put season item %s: %w", key, err)
		}

	case season.WritePatch:
		input := patchInput(s.table, key, attrs, updatedAt)
		if _, err := s.api.UpdateItem(ctx, input); err != nil {
			return fmt.Errorf("update season item %s: %w", key, err)
		}
	}

	s.logger.DebugContext(ctx, "season item written", "key", key.String(), "mode", string(mode), "attributes", len(attrs))
	return nil
}

func itemKey(key season.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrLeagueKey:  &types.AttributeValueMemberS{Value: key.Partition()},
		attrLeagueYear: &types.AttributeValueMemberN{Value: strconv.Itoa(key.Season)},
	}
}

// patchInput builds "SET #a0 = :v0, ..." over the present attributes in
// name order.
func patchInput(table string, key season.Key, attrs map[string]string, updatedAt string) *dynamodb.UpdateItemInput {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := make(map[string]string, len(names)+1)
	exprValues := make(map[string]types.AttributeValue, len(names)+1)
	sets := make([]string, 0, len(names)+1)
	for i, name := range names {
		n, v := "#a"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		exprNames[n] = name
		exprValues[v] = &types.AttributeValueMemberS{Value: attrs[name]}
		sets = append(sets, n+" = "+v)
	}
	exprNames["#updatedAt"] = attrUpdatedAt
	exprValues[":updatedAt"] = &types.AttributeValueMemberS{Value: updatedAt}
	sets = append(sets, "#updatedAt = :updatedAt")

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       itemKey(key),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	}
}
