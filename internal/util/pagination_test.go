package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size, from, limit int
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 5, 0, 5},
		{2, 0, 10, DefaultPageSize},
		{2, 1000, 10, DefaultPageSize},
	}
	for _, tc := range cases {
		from, limit := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.from, from)
		assert.Equal(t, tc.limit, limit)
	}
}

func TestWindow(t *testing.T) {
	lo, hi := Window(25, 20, 10)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 25, hi)

	lo, hi = Window(5, 10, 10)
	assert.Equal(t, 5, lo)
	assert.Equal(t, 5, hi)
}

func TestCalculate_HugePage(t *testing.T) {
	page := ParseIntDefault("100000000000000001", 1)
	from, limit := Calculate(page, 100)
	assert.GreaterOrEqual(t, from, 0)
	assert.Equal(t, 100, limit)

	from, _ = Calculate(math.MaxInt, 1)
	assert.GreaterOrEqual(t, from, 0)

	items := []int{1, 2, 3}
	lo, hi := Window(len(items), from, limit)
	assert.Empty(t, items[lo:hi])
}

func TestWindow_NegativeFrom(t *testing.T) {
	lo, hi := Window(3, -50, 10)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 4, ParseIntDefault("", 4))
	assert.Equal(t, 4, ParseIntDefault("x", 4))
	assert.Equal(t, 9, ParseIntDefault("9", 4))
}
