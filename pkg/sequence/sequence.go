package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/procureflow-backend/pkg/redis"
)

const (
	PrefixMaterialRequest = "MRF"
	PrefixPurchaseOrder   = "PO"
	PrefixGoodsReceived   = "GRN"

	defaultWidth = 6
)

// Allocator hands out human readable references such as MRF-000042 from
// per-prefix Redis counters.
type Allocator struct {
	store redis.CounterStore
	width int
}

func NewAllocator(store redis.CounterStore) (*Allocator, error) {
	if store == nil {
		return nil, errors.New("counter store required")
	}
	return &Allocator{store: store, width: defaultWidth}, nil
}

// Next returns the next reference for prefix.
func (a *Allocator) Next(ctx context.Context, prefix string) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", errors.New("reference prefix required")
	}
	n, err := a.store.Incr(ctx, a.store.CounterKey("ref:"+strings.ToLower(prefix)))
	if err != nil {
		return "", fmt.Errorf("allocate %s reference: %w", prefix, err)
	}
	return Format(prefix, n, a.width), nil
}

// Format renders a reference with a zero padded sequence number.
func Format(prefix string, n int64, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}
