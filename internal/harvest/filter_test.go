package harvest_test

import (
	"testing"

	"github.com/UnknownOlympus/iris/internal/harvest"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsEligible(t *testing.T) {
	for status := range 10 {
		for count := range 4 {
			target := models.Target{ID: 1, Status: status, Count: count}
			want := status == models.StatusUncontacted && count == 1
			assert.Equal(t, want, harvest.IsEligible(target), "status=%d count=%d", status, count)
		}
	}
}

func TestEligible(t *testing.T) {
	targets := []models.Target{
		{ID: 1, Status: 1, Count: 1},
		{ID: 2, Status: 7, Count: 1},
		{ID: 3, Status: 1, Count: 21},
		{ID: 4, Status: 1, Count: 1},
		{ID: 5, Status: 1, Count: 0},
	}

	eligible := harvest.Eligible(targets)

	assert.Equal(t, []models.Target{{ID: 1, Status: 1, Count: 1}, {ID: 4, Status: 1, Count: 1}}, eligible)
	assert.Equal(t, eligible, harvest.Eligible(eligible), "filtering twice must not change the result")
	assert.Len(t, targets, 5, "input must not be modified")
}

func TestEligible_Empty(t *testing.T) {
	assert.Empty(t, harvest.Eligible(nil))
	assert.Empty(t, harvest.Eligible([]models.Target{{ID: 1, Status: 2, Count: 2}}))
}
