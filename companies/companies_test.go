package companies

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	in := "Berkshire Hathaway: 0001067983\n\n  Apple Inc :  0000320193  \r\nDup: 0001067983\n"

	list, err := Parse(strings.NewReader(in))

	require.NoError(t, err)
	assert.Equal(t, []Company{
		{Name: "Berkshire Hathaway", CIK: "0001067983"},
		{Name: "Apple Inc", CIK: "0000320193"},
	}, list)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"missing separator", "ok: 1\nno separator here\n", "line 2"},
		{"empty identifier", "Name: \n", "line 1: empty identifier"},
		{"blank identifier", "ok: 1\nName:    \r\n", "line 2: empty identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	list := []Company{{Name: "A Fund", CIK: "1"}, {Name: "B Fund", CIK: "2"}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, list))
	assert.Equal(t, "A Fund: 1\nB Fund: 2\n", buf.String())

	path := filepath.Join(t.TempDir(), "companies.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
