package rawdata

import "context"

type Archive interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
