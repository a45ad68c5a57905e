package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateETag(t *testing.T) {
	a, err := GenerateETag([]string{"x", "y"})
	require.NoError(t, err)
	b, err := GenerateETag([]string{"x", "y"})
	require.NoError(t, err)
	c, err := GenerateETag([]string{"y", "x"})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = GenerateETag(make(chan int))
	assert.Error(t, err)
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "nope", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "nope", body["error"])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, 15, d.Day())

	for _, bad := range []string{"", "15-03-2026", "2026-13-01", "2026-3-5"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}
