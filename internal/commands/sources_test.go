package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSources(t *testing.T) {
	out, _, err := runReconcile(t, "sources")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "chase", lines[0])
	assert.True(t, strings.HasPrefix(lines[4], "ynab\tsplits: Split"))
}

func TestVersion(t *testing.T) {
	out, _, err := runReconcile(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "reconcile version dev")
}
