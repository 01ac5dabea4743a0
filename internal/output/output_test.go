package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Table_BasicOutput(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: false}

	headers := []string{"Symbol", "Last"}
	rows := [][]string{
		{"AAPL", "150.25"},
		{"GOOGL", "140.5"},
	}

	err := f.Table(headers, rows)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Symbol")
	assert.Contains(t, output, "Last")
	assert.Contains(t, output, "AAPL")
	assert.Contains(t, output, "150.25")
	assert.Contains(t, output, "GOOGL")
	assert.Contains(t, output, "140.5")
}

func TestFormatter_Table_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: false}

	err := f.Table([]string{"Symbol", "Last"}, nil)
	require.NoError(t, err)

	output := buf.String()
	// Should still show headers
	assert.Contains(t, output, "Symbol")
	assert.Contains(t, output, "Last")
}

func TestFormatter_Table_InJSONMode_OutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: true}

	headers := []string{"Symbol", "Last"}
	rows := [][]string{
		{"AAPL", "150.25"},
	}

	err := f.Table(headers, rows)
	require.NoError(t, err)

	var parsed []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "AAPL", parsed[0]["Symbol"])
	assert.Equal(t, "150.25", parsed[0]["Last"])
}

func TestFormatter_KeyValues_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: false}

	err := f.KeyValues("Account", "12345abcd", "Net Cash", "2500.10")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Account:")
	assert.Contains(t, output, "12345abcd")
	assert.Contains(t, output, "Net Cash:")
	assert.Contains(t, output, "2500.10")
}

func TestFormatter_KeyValues_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: true}

	err := f.KeyValues("Account", "12345abcd", "Net Cash", "2500.10")
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "12345abcd", parsed["Account"])
	assert.Equal(t, "2500.10", parsed["Net Cash"])
}

func TestFormatter_JSON_PrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: true}

	err := f.Print(map[string]string{"key": "value"})
	require.NoError(t, err)

	output := buf.String()
	// Should be indented (pretty printed)
	assert.Contains(t, output, "\n")
	assert.Contains(t, output, "  ")
}

func TestFormatter_Print_NonJSONMode_Fallback(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{Writer: &buf, JSONMode: false}

	err := f.Print(map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.NotEmpty(t, buf.String())
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, false)

	assert.Equal(t, &buf, f.Writer)
	assert.False(t, f.JSONMode)

	f2 := New(&buf, true)
	assert.True(t, f2.JSONMode)
}
