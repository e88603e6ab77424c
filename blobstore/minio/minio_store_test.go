package minio

import (
	"bytes"
	"crypto/md5" //nolint:gosec // S3 ETags are MD5
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tensgo/blobstore"
)

const testBucket = "tensors"

// fakeS3 serves the object calls Store makes: HEAD, ranged GET, PUT,
// DELETE and ListObjectsV2 on a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	gets    int
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeS3) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeS3) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeS3) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func etagOf(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // S3 ETags are MD5
	return hex.EncodeToString(sum[:])
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != testBucket {
		writeError(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case key == "" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		f.objects[key] = body
		w.Header().Set("ETag", `"`+etagOf(body)+`"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodHead:
		data, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		setObjectHeaders(w, data, len(data))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		f.gets++
		f.get(w, r, key)
	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func (f *fakeS3) get(w http.ResponseWriter, r *http.Request, key string) {
	data, ok := f.objects[key]
	if !ok {
		writeError(w, http.StatusNotFound, "NoSuchKey")
		return
	}
	if m := r.Header.Get("If-Match"); m != "" && strings.Trim(m, `"`) != etagOf(data) {
		writeError(w, http.StatusPreconditionFailed, "PreconditionFailed")
		return
	}

	rng := r.Header.Get("Range")
	if rng == "" {
		setObjectHeaders(w, data, len(data))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	from, to, _ := strings.Cut(strings.TrimPrefix(rng, "bytes="), "-")
	lo, _ := strconv.Atoi(from)
	hi, _ := strconv.Atoi(to)
	hi = min(hi, len(data)-1)
	part := data[lo : hi+1]
	setObjectHeaders(w, data, len(part))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", lo, hi, len(data)))
	w.WriteHeader(http.StatusPartialContent)
	_, _ = w.Write(part)
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	type content struct {
		Key          string
		Size         int64
		ETag         string
		LastModified string
	}
	type result struct {
		XMLName  xml.Name `xml:"ListBucketResult"`
		Name     string
		Prefix   string
		KeyCount int
		MaxKeys  int
		Contents []content
	}

	res := result{Name: testBucket, Prefix: prefix, MaxKeys: 1000}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		res.Contents = append(res.Contents, content{
			Key:          k,
			Size:         int64(len(f.objects[k])),
			ETag:         `"` + etagOf(f.objects[k]) + `"`,
			LastModified: time.Now().UTC().Format(time.RFC3339),
		})
	}
	res.KeyCount = len(res.Contents)

	w.Header().Set("Content-Type", "application/xml")
	_ = xml.NewEncoder(w).Encode(res)
}

func setObjectHeaders(w http.ResponseWriter, data []byte, n int) {
	h := w.Header()
	h.Set("ETag", `"`+etagOf(data)+`"`)
	h.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.Itoa(n))
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<Error><Code>%s</Code><Message>%s</Message></Error>", code, code)
}

func newTestStore(t *testing.T, prefix string) (*Store, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)

	return NewStore(client, testBucket, prefix), fake
}

func TestStoreRoundTrip(t *testing.T) {
	store, fake := newTestStore(t, "checkpoints/")
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("v1/manifest.json")))
	assert.True(t, fake.has("checkpoints/CURRENT"))

	data, err := blobstore.ReadAll(ctx, store, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "v1/manifest.json", string(data))

	_, err = store.Open(ctx, "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "CURRENT"))
	require.NoError(t, store.Delete(ctx, "CURRENT"))
	_, err = store.Open(ctx, "CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStoreVerifiedTensorBlob(t *testing.T) {
	store, _ := newTestStore(t, "")
	ctx := t.Context()
	payload := bytes.Repeat([]byte("tensor"), 5000)

	d, err := blobstore.WriteBlob(ctx, store, "v1/00000.tensor", bytes.NewReader(payload), blobstore.Pipe{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), d.Size)

	got, err := blobstore.ReadVerified(ctx, store, "v1/00000.tensor", d, blobstore.Pipe{})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, got))
}

func TestStoreAbortUploadsNothing(t *testing.T) {
	store, fake := newTestStore(t, "")
	ctx := t.Context()

	w, err := store.Create(ctx, "v1/00001.tensor")
	require.NoError(t, err)
	_, err = w.Write([]byte("half a tensor"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	assert.Zero(t, fake.len())
	_, err = w.Write([]byte("more"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestStoreRangedReads(t *testing.T) {
	store, fake := newTestStore(t, "")
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "blob", []byte("0123456789")))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(buf[:n]))

	n, err = blob.ReadAt(ctx, buf, 8)
	assert.Equal(t, 2, n)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	before := fake.getCount()
	n, err = blob.ReadAt(ctx, buf, 10)
	assert.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, before, fake.getCount(), "reads past the end do not hit the server")
}

func TestStoreReadFailsAfterOverwrite(t *testing.T) {
	store, _ := newTestStore(t, "")
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "v1/00000.tensor", []byte("first tensor")))

	blob, err := store.Open(ctx, "v1/00000.tensor")
	require.NoError(t, err)
	defer blob.Close()

	require.NoError(t, store.Put(ctx, "v1/00000.tensor", []byte("other tensor")))

	buf := make([]byte, blob.Size())
	_, err = blob.ReadAt(ctx, buf, 0)
	require.Error(t, err)
}

func TestStoreList(t *testing.T) {
	store, fake := newTestStore(t, "root")
	ctx := t.Context()

	for _, name := range []string{"b/00001.tensor", "a/manifest.json", "a/00000.tensor", "CURRENT"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}
	fake.put("elsewhere/x", []byte("x"))

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/00000.tensor", "a/manifest.json"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT", "a/00000.tensor", "a/manifest.json", "b/00001.tensor"}, all)
}
