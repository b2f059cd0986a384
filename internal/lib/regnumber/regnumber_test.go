package regnumber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025000007", Format(7, now))
	assert.Equal(t, "2025000123", Format(123, now))
	assert.Equal(t, "20251234567", Format(1234567, now))

	nextYear := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026000007", Format(7, nextYear))
}
