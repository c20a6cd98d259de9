package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	// (page-1)*size must not overflow
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	from = (page - 1) * size
	return from, size
}

// Window returns the bounds of the page [from, from+limit) within n items.
func Window(n, from, limit int) (lo, hi int) {
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	if limit < 0 {
		limit = 0
	}
	hi = from + limit
	if hi > n {
		hi = n
	}
	return from, hi
}
