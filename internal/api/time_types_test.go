package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexDate_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"date only", `"2024-01-15"`, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", `"2024-01-15T10:30:00Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"epoch ms number", `1705314600000`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"epoch ms string", `"1705314600000"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fd FlexDate
			require.NoError(t, json.Unmarshal([]byte(tt.input), &fd))
			assert.True(t, tt.want.Equal(fd.Time), "got %v", fd.Time)
		})
	}
}

func TestFlexDate_UnmarshalInvalid(t *testing.T) {
	var fd FlexDate
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &fd))
	assert.Error(t, json.Unmarshal([]byte(`true`), &fd))
}

func TestFlexDate_Marshal(t *testing.T) {
	data, err := json.Marshal(FlexDate{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-05"`, string(data))
}

func TestFlexDate_Ptr(t *testing.T) {
	var nilDate *FlexDate
	assert.Nil(t, nilDate.Ptr())

	fd := &FlexDate{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 2024, fd.Ptr().Year())
}
