package sequence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	values map[string]int64
	err    error
}

func (f *fakeStore) Next(ctx context.Context, name string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.values[name]++
	return f.values[name], nil
}

func TestOrderNumberFormat(t *testing.T) {
	g := NewGenerator(&fakeStore{values: map[string]int64{"order": 1000}})

	assert.Equal(t, "DC-001001", g.OrderNumber(context.Background()))
	assert.Equal(t, "DC-001002", g.OrderNumber(context.Background()))
}

func TestInvoiceNumberFormat(t *testing.T) {
	g := NewGenerator(&fakeStore{values: map[string]int64{"invoice": 1000}})

	assert.Equal(t, "INV-001001", g.InvoiceNumber(context.Background()))
}

func TestTimestampFallbackOnCounterFailure(t *testing.T) {
	g := NewGenerator(&fakeStore{err: errors.New("connection refused")})

	first := g.OrderNumber(context.Background())
	assert.True(t, strings.HasPrefix(first, "DC-"), "fallback keeps the type prefix, got %s", first)
	// The suffix is a millisecond timestamp, much longer than the padded form.
	assert.Greater(t, len(first), len("DC-001001"))
}
