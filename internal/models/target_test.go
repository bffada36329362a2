package models_test

import (
	"testing"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTarget_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		target models.Target
		needs  bool
		single bool
	}{
		{name: "uncontacted single", target: models.Target{Status: 1, Count: 1}, needs: true, single: true},
		{name: "uncontacted multi", target: models.Target{Status: 1, Count: 21}, needs: true, single: false},
		{name: "contacted single", target: models.Target{Status: 7, Count: 1}, needs: false, single: true},
		{name: "zero households", target: models.Target{Status: 1, Count: 0}, needs: true, single: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.needs, tt.target.NeedsApplication())
			assert.Equal(t, tt.single, tt.target.IsSingleHousehold())
		})
	}
}
