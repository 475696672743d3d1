package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"plain", "2024-01-15", NewDate(2024, time.January, 15), false},
		{"with time", "2024-01-15T00:00:00", NewDate(2024, time.January, 15), false},
		{"space separated time", "2024-01-15 08:30:00", NewDate(2024, time.January, 15), false},
		{"padded", "  2024-02-29 ", NewDate(2024, time.February, 29), false},
		{"empty", "", Date{}, true},
		{"invalid day", "2023-02-29", Date{}, true},
		{"wrong layout", "15/01/2024", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2024, time.January, 15)
	b := NewDate(2024, time.February, 1)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(NewDate(2024, time.January, 15)))
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.Equal(t, NewDate(2024, time.March, 1), NewDate(2024, time.February, 30), "normalized")
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: NewDate(2024, time.January, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-05","z":""}`, string(data))

	var out struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, NewDate(2024, time.January, 5), out.D)
	assert.True(t, out.Z.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"nope"}`), &out))
}
