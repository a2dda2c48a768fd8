package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanceTotal(t *testing.T) {
	assert.Equal(t, int64(0), Balance{}.Total())
	assert.Equal(t, int64(43), Balance{WeeklyRP: 3, HistoricalRP: 40}.Total())
	assert.Equal(t, int64(math.MaxInt64), Balance{WeeklyRP: 10, HistoricalRP: math.MaxInt64 - 5}.Total())
}
