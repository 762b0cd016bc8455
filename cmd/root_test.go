package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadcompose/internal/ab"
	"loadcompose/internal/compose"
	"loadcompose/internal/remote"
)

func TestSplitComposeArgs(t *testing.T) {
	own, model, meta, err := splitComposeArgs([]string{
		"ab", "-n", "10", "--write-to", "./out", "-H", "Accept: text/html", "--overwrite",
		"--upload-and-run-as=my-test", "http://example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", model)
	assert.Equal(t, `-n 10 -H "Accept: text/html" http://example.com/`, meta)
	assert.Equal(t, []string{"--write-to", "./out", "--overwrite", "--upload-and-run-as=my-test"}, own)
}

func TestSplitComposeArgs_Empty(t *testing.T) {
	own, model, meta, err := splitComposeArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, own)
	assert.Empty(t, model)
	assert.Empty(t, meta)

	_, _, _, err = splitComposeArgs([]string{"ab", "--write-to"})
	assert.Error(t, err)
}

func TestJoinMeta_KeepsQuoted(t *testing.T) {
	assert.Equal(t, `-H 'X: y' -C a=b`, joinMeta([]string{"-H", "'X: y'", "-C", "a=b"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&compose.UnknownModelError{}))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrapped: %w", &ab.MalformedOptionsError{Msg: "bad"})))
	assert.Equal(t, 1, exitCode(&remote.APIError{Status: 500}))
	assert.Equal(t, 1, exitCode(errors.New("plain")))
}
