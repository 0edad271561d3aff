package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_MarshalJSONKeepsFieldOrder(t *testing.T) {
	row := Row{
		{Name: "user_id", Value: "U00001"},
		{Name: "age_group", Value: "45+"},
		{Name: "region", Value: "関東"},
		{Name: "amount", Value: int64(980)},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":"U00001","age_group":"45+","region":"関東","amount":980}`, string(data))
}

func TestRow_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Row
		wantErr bool
	}{
		{
			name:  "keeps order and integer types",
			input: `{"payment_id":"P000001","user_id":"U00003","amount":9800}`,
			want: Row{
				{Name: "payment_id", Value: "P000001"},
				{Name: "user_id", Value: "U00003"},
				{Name: "amount", Value: int64(9800)},
			},
		},
		{
			name:  "fractional numbers become float64",
			input: `{"ratio":1.5,"missing":null}`,
			want: Row{
				{Name: "ratio", Value: 1.5},
				{Name: "missing", Value: nil},
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  Row{},
		},
		{
			name:    "array is rejected",
			input:   `[1,2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Row
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRow_Accessors(t *testing.T) {
	row := Row{
		{Name: "id", Value: int64(7)},
		{Name: "month", Value: "2024-03"},
	}

	id, ok := row.Int("id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = row.Int("month")
	assert.False(t, ok, "string value is not an integer")

	assert.Equal(t, "2024-03", row.String("month"))
	assert.Empty(t, row.String("absent"))
}
