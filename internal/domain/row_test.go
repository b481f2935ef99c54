package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowUnmarshalJSON_PreservesKeyOrder(t *testing.T) {
	var row Row
	err := json.Unmarshal([]byte(`{"ITEM":"A001","CODE":"X123","QTY":3}`), &row)
	require.NoError(t, err)

	assert.Equal(t, []string{"ITEM", "CODE", "QTY"}, row.Keys())
	assert.Equal(t, 3, row.Len())
	assert.Equal(t, "A001", row.StringValue("ITEM"))
	assert.Equal(t, "3", row.StringValue("QTY"))
}

func TestRowUnmarshalJSON_ValueKinds(t *testing.T) {
	var row Row
	err := json.Unmarshal(
		[]byte(`{"s":"text","n":1.5,"b":true,"null":null,"nested":{"a":1}}`),
		&row,
	)
	require.NoError(t, err)

	assert.Equal(t, "text", row.StringValue("s"))
	assert.Equal(t, "1.5", row.StringValue("n"))
	assert.Equal(t, "true", row.StringValue("b"))
	assert.Equal(t, "", row.StringValue("null"))
	assert.Equal(t, "", row.StringValue("missing"))
}

func TestRowUnmarshalJSON_DuplicateKeys(t *testing.T) {
	var row Row
	err := json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), &row)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, row.Keys())
	assert.Equal(t, "3", row.StringValue("a"))
}

func TestRowUnmarshalJSON_RejectsNonObject(t *testing.T) {
	var row Row
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &row))
	assert.Error(t, json.Unmarshal([]byte(`"scalar"`), &row))
}

func TestRowMarshalJSON_RoundTrip(t *testing.T) {
	original := `{"ITEM":"A001","CODE":"X123"}`

	var row Row
	require.NoError(t, json.Unmarshal([]byte(original), &row))

	encoded, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, original, string(encoded))
}

func TestNewRow(t *testing.T) {
	row := NewRow("ITEM", "A001", "QTY", 2)
	assert.Equal(t, []string{"ITEM", "QTY"}, row.Keys())
	assert.Equal(t, "A001", row.StringValue("ITEM"))
	assert.Equal(t, "2", row.StringValue("QTY"))

	assert.Panics(t, func() { NewRow("odd") })
	assert.Panics(t, func() { NewRow(1, "value") })
}
