package local_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/storage/local"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	store, err := local.NewClient(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Upload(ctx, port.UploadInput{
		Key:         "invoices/abc/factura.pdf",
		Body:        strings.NewReader("contents"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)

	rc, err := store.Download(ctx, "invoices/abc/factura.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "contents", string(data))

	require.NoError(t, store.Delete(ctx, "invoices/abc/factura.pdf"))
	_, err = store.Download(ctx, "invoices/abc/factura.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	store, err := local.NewClient(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), port.UploadInput{
		Key:  "../outside.txt",
		Body: strings.NewReader("x"),
	})
	assert.Error(t, err)

	_, err = store.Download(context.Background(), "/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorage_DeleteMissing(t *testing.T) {
	store, err := local.NewClient(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "nope"), domain.ErrNotFound)
}
