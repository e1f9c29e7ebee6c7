package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysSoberWithoutDate(t *testing.T) {
	u := User{}
	assert.Nil(t, u.DaysSober())
}

func TestDaysSoberCountsFullDays(t *testing.T) {
	date := time.Now().Add(-10*24*time.Hour - time.Hour)
	u := User{SoberDate: &date}

	days := u.DaysSober()
	require.NotNil(t, days)
	assert.Equal(t, 10, *days)
}
