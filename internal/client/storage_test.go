package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krakosik/symposium/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalFileStore(dir, UploadURLPrefix)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "1700000000000-talk slides.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1700000000000-talk%20slides.pdf", url)

	content, err := os.ReadFile(filepath.Join(dir, "1700000000000-talk slides.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))

	_, err = store.Save(context.Background(), "1700000000000-talk slides.pdf", "application/pdf", strings.NewReader("again"))
	assert.Error(t, err)
}

func TestLocalFileStoreStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir, UploadURLPrefix)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "../../etc/passwd.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/passwd.pdf", url)
	assert.FileExists(t, filepath.Join(dir, "passwd.pdf"))
}

func TestNewClientsWithoutBroker(t *testing.T) {
	clients := NewClients(testutil.Config(t))
	t.Cleanup(func() { _ = clients.Close() })

	assert.NoError(t, clients.RabbitMQClient().PublishMessage(context.Background(), "vote.cast", []byte("{}")))
	assert.NotNil(t, clients.AuthClient())
	assert.NotNil(t, clients.FileStore())
}
