package filestore

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":        "report.pdf",
		"we ird/na me.txt":  "we_ird_na_me.txt",
		"../../etc/passwd":  ".._.._etc_passwd",
		"кошка.jpg":         "_____.jpg",
		"":                  "file",
		"UPPER-case_ok.PNG": "UPPER-case_ok.PNG",
	}

	for input, want := range cases {
		assert.Equal(t, want, SanitizeName(input), "input %q", input)
	}
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	path, n, err := store.Save("abc-file.txt", strings.NewReader("contents"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("contents")), n)

	reader, err := store.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(got))
}

func TestOpenMissingContent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("/nonexistent/path")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestRemoveTolerant(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	path, _, err := store.Save("gone.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(path))
}
