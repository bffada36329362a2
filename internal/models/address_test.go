package models_test

import (
	"encoding/json"
	"testing"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_FormattedAddress(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		addr := models.Address{Line1: "18788 Marsh Ln"}
		assert.Equal(t, "18788 Marsh Ln", addr.FormattedAddress())
	})

	t.Run("blank second line", func(t *testing.T) {
		addr := models.Address{Line1: "18788 Marsh Ln", Line2: "   "}
		assert.Equal(t, "18788 Marsh Ln", addr.FormattedAddress())
	})

	t.Run("two lines", func(t *testing.T) {
		addr := models.Address{Line1: "18788 Marsh Ln", Line2: "Apt 122"}
		assert.Equal(t, "18788 Marsh Ln, Apt 122", addr.FormattedAddress())
	})
}

func TestAddress_WithDefaultNames(t *testing.T) {
	addr := models.Address{Line1: "1 Elm St"}.WithDefaultNames()
	assert.Equal(t, "Current", addr.FirstName)
	assert.Equal(t, "Resident", addr.LastName)

	named := models.Address{FirstName: "Ada", LastName: "Lovelace"}.WithDefaultNames()
	assert.Equal(t, "Ada", named.FirstName)
	assert.Equal(t, "Lovelace", named.LastName)
}

func TestAddress_UnmarshalJSON(t *testing.T) {
	body := `{"id": 34934369, "lat": 33.00684, "lng": -96.856996, "status": 1,
		"latLng": "33.00684,-96.856996", "precinct": null, "addr": "18788 Marsh Ln Apt 122",
		"addr2": null, "city": "Dallas", "state": "TX", "zip5": 75287, "zip4": null,
		"county": "DENTON", "created": 1591244383712, "modified": 1599067019417}`

	var addr models.Address
	require.NoError(t, json.Unmarshal([]byte(body), &addr))

	assert.Equal(t, 34934369, addr.ID)
	assert.InEpsilon(t, 33.00684, addr.Latitude, 0.000001)
	assert.InEpsilon(t, -96.856996, addr.Longitude, 0.000001)
	assert.Equal(t, "18788 Marsh Ln Apt 122", addr.Line1)
	assert.Empty(t, addr.Line2)
	assert.Equal(t, models.Zip5("75287"), addr.Zip5)
	assert.Equal(t, "DENTON", addr.County)
}

func TestZip5_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    models.Zip5
		wantErr bool
	}{
		{name: "number", input: `75287`, want: "75287"},
		{name: "string", input: `"75287"`, want: "75287"},
		{name: "leading zero number", input: `2134`, want: "02134"},
		{name: "leading zero string", input: `"02134"`, want: "02134"},
		{name: "null", input: `null`, want: ""},
		{name: "empty string", input: `""`, want: ""},
		{name: "letters", input: `"7528A"`, wantErr: true},
		{name: "too long", input: `"752870"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var zip models.Zip5
			err := json.Unmarshal([]byte(tt.input), &zip)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, zip)
		})
	}
}

func TestSortAddresses(t *testing.T) {
	input := []models.Address{
		{Zip5: "75287", City: "Dallas", Line1: "B St"},
		{Zip5: "75287", City: "Dallas", Line1: "A St"},
		{Zip5: "75201", City: "Austin", Line1: "C St"},
	}

	sorted := models.SortAddresses(input)

	require.Len(t, sorted, 3)
	assert.Equal(t, "C St", sorted[0].Line1)
	assert.Equal(t, models.Zip5("75201"), sorted[0].Zip5)
	assert.Equal(t, "A St", sorted[1].Line1)
	assert.Equal(t, "B St", sorted[2].Line1)
	// The input keeps its original order.
	assert.Equal(t, "B St", input[0].Line1)
}

func TestSortAddresses_CityBeforeAddress(t *testing.T) {
	input := []models.Address{
		{Zip5: "75287", City: "Dallas", Line1: "A St"},
		{Zip5: "75287", City: "Carrollton", Line1: "Z St"},
	}

	sorted := models.SortAddresses(input)

	assert.Equal(t, "Carrollton", sorted[0].City)
	assert.Equal(t, "Dallas", sorted[1].City)
}
