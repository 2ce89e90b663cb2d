package season

import (
	"context"
	"fmt"
)

type WriteMode string

const (
	// WriteUpsert replaces the stored season.
	WriteUpsert WriteMode = "upsert"
	// WritePatch merges the present attributes into the stored season.
	WritePatch WriteMode = "patch"
)

func (m WriteMode) Validate() error {
	switch m {
	case WriteUpsert, WritePatch:
		return nil
	default:
		return fmt.Errorf("unsupported write mode %q", m)
	}
}

// Store is the key-value gateway for assembled league seasons.
type Store interface {
	Write(ctx context.Context, record Record, mode WriteMode) error
}
