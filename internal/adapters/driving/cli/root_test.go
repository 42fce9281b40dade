package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "vaultsync", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"sync", "search", "watch", "status", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestBuildNoteStore_Unconfigured(t *testing.T) {
	store, err := buildNoteStore(&domain.VaultSettings{})

	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestBuildNoteStore_Filesystem(t *testing.T) {
	store, err := buildNoteStore(&domain.VaultSettings{
		Backend: domain.StoreBackendFilesystem,
		Root:    t.TempDir(),
	})

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())
}

func TestBuildNoteStore_UnknownBackend(t *testing.T) {
	_, err := buildNoteStore(&domain.VaultSettings{
		Backend: domain.StoreBackend("carrier-pigeon"),
		Root:    "/tmp",
	})

	// An unknown backend with a root set fails configuration checks
	// upstream, so it comes back unconfigured here.
	assert.NoError(t, err)
}

type trackingCloser struct {
	closed int
}

func (c *trackingCloser) Close() error {
	c.closed++
	return nil
}

func TestCloseServices_ReleasesOnce(t *testing.T) {
	oldClosers := closers
	defer func() {
		closers = oldClosers
	}()

	tracker := &trackingCloser{}
	closers = []io.Closer{tracker}

	closeServices()
	closeServices()

	assert.Equal(t, 1, tracker.closed)
}
