package domain_test

import (
	"strconv"
	"testing"

	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortIDGenerator_FixedWidthDigits(t *testing.T) {
	gen := domain.NewShortIDGenerator(8)
	assert.Equal(t, 8, gen.Digits())

	for i := 0; i < 500; i++ {
		id, err := gen.New()
		require.NoError(t, err)
		require.Len(t, id, 8)

		n, err := strconv.ParseUint(id, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, uint64(10000000))
		assert.LessOrEqual(t, n, uint64(99999999))
	}
}

func TestShortIDGenerator_WidthFallback(t *testing.T) {
	assert.Equal(t, domain.DefaultShortIDDigits, domain.NewShortIDGenerator(0).Digits())
	assert.Equal(t, domain.DefaultShortIDDigits, domain.NewShortIDGenerator(40).Digits())
	assert.Equal(t, 12, domain.NewShortIDGenerator(12).Digits())
}

func TestShortIDGenerator_Spread(t *testing.T) {
	gen := domain.NewShortIDGenerator(8)
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id, err := gen.New()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	// 200 draws from 9e7 values; a handful of repeats would point at a broken source.
	assert.Greater(t, len(seen), 195)
}
