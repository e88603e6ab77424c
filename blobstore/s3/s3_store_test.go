package s3

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/blobstore"
)

// TestIntegration_S3Store runs against a real bucket named by S3_BUCKET.
func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	ctx := t.Context()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	root := fmt.Sprintf("tensgo-it-%d", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, root, func(c *UploadConfig) { c.PartSize = 5 << 20 })
	t.Cleanup(func() {
		names, _ := store.List(ctx, "")
		for _, n := range names {
			_ = store.Delete(ctx, n)
		}
	})

	for _, size := range []int{0, 4 << 10, 6 << 20} {
		t.Run(fmt.Sprintf("%dB", size), func(t *testing.T) {
			payload := make([]byte, size)
			_, _ = rand.Read(payload)
			name := fmt.Sprintf("v1/%08d.tensor", size)

			d, err := blobstore.WriteBlob(ctx, store, name, bytes.NewReader(payload), blobstore.Pipe{})
			require.NoError(t, err)

			got, err := blobstore.ReadVerified(ctx, store, name, d, blobstore.Pipe{})
			require.NoError(t, err)
			assert.True(t, bytes.Equal(payload, got))
		})
	}

	names, err := store.List(ctx, "v1/")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	_, err = store.Open(ctx, "v1/missing.tensor")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
