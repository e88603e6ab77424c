package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tensgo/blobstore"
	"github.com/hupe1980/tensgo/codec"
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/internal/resource"
	"github.com/hupe1980/tensgo/memory"
	"github.com/hupe1980/tensgo/tensor"
)

// Options configures a Store.
type Options struct {
	// Compressor is applied to every tensor blob. Default: codec.Zstd.
	Compressor codec.Compressor
	// Codec encodes manifests. Default: codec.Default.
	Codec codec.Codec
	// Concurrency bounds the number of blobs transferred at once. Default: 4.
	Concurrency int
	// IOLimitBytesPerSec throttles blob reads and writes. 0 means unlimited.
	IOLimitBytesPerSec int64
	// BufferLimitBytes bounds the encoded and compressed bytes held by
	// transfers in flight. A transfer that would exceed it waits for others
	// to finish; one larger than the limit fails with ErrBufferLimit.
	// 0 means unlimited.
	BufferLimitBytes int64
	// Logger receives save and load events. nil discards.
	Logger *slog.Logger
}

// WithCompressor sets the blob compressor.
func WithCompressor(c codec.Compressor) func(*Options) {
	return func(o *Options) { o.Compressor = c }
}

// WithConcurrency sets the number of parallel blob transfers.
func WithConcurrency(n int) func(*Options) {
	return func(o *Options) { o.Concurrency = n }
}

// WithIOLimit throttles blob IO to bytesPerSec.
func WithIOLimit(bytesPerSec int64) func(*Options) {
	return func(o *Options) { o.IOLimitBytesPerSec = bytesPerSec }
}

// WithBufferLimit bounds the transient blob buffers of concurrent transfers.
func WithBufferLimit(bytes int64) func(*Options) {
	return func(o *Options) { o.BufferLimitBytes = bytes }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}

// Store saves and loads checkpoints.
type Store struct {
	blobs      blobstore.BlobStore
	codec      codec.Codec
	compressor codec.Compressor
	rc         *resource.Controller
	logger     *slog.Logger
	now        func() time.Time
}

// New returns a Store writing to blobs.
func New(blobs blobstore.BlobStore, optFns ...func(*Options)) *Store {
	opts := Options{
		Compressor:  codec.Zstd{},
		Codec:       codec.Default,
		Concurrency: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Compressor == nil {
		opts.Compressor = codec.None{}
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		blobs:      blobs,
		codec:      opts.Codec,
		compressor: opts.Compressor,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:     opts.BufferLimitBytes,
			MaxBackgroundWorkers: int64(opts.Concurrency),
			IOLimitBytesPerSec:   opts.IOLimitBytesPerSec,
		}),
		logger: opts.Logger,
		now:    time.Now,
	}
}

func validateName(name string) error {
	if name == "" || name == CurrentName || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save writes tensors as checkpoint name and makes it current. Tensors are
// read but not released. Saving under an existing name overwrites it.
func (s *Store) Save(ctx context.Context, name string, tensors map[string]tensor.Any) (*Manifest, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	names := slices.Sorted(maps.Keys(tensors))
	for _, n := range names {
		if t := tensors[n]; t == nil || !t.IsValid() {
			return nil, fmt.Errorf("checkpoint: tensor %q is nil or released", n)
		}
	}

	m := &Manifest{
		Version:     FormatVersion,
		Name:        name,
		CreatedAt:   s.now().UTC(),
		Codec:       s.codec.Name(),
		Compression: s.compressor.Name(),
		Tensors:     make([]Entry, len(names)),
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range names {
		if err := s.rc.AcquireBackground(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer s.rc.ReleaseBackground()
			entry, err := s.saveTensor(gctx, blobPath(name, i), tensors[n])
			if err != nil {
				return fmt.Errorf("checkpoint: save %q: %w", n, err)
			}
			entry.Name = n
			m.Tensors[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: encode manifest: %w", err)
	}
	if err := s.blobs.Put(ctx, manifestPath(name), data); err != nil {
		return nil, fmt.Errorf("checkpoint: write manifest: %w", err)
	}
	if err := s.blobs.Put(ctx, CurrentName, []byte(manifestPath(name))); err != nil {
		return nil, fmt.Errorf("checkpoint: commit: %w", err)
	}

	s.logger.Info("checkpoint saved",
		slog.String("name", name),
		slog.Int("tensors", len(names)),
		slog.Int64("bytes", m.TotalStoredSize()),
		slog.Duration("elapsed", time.Since(start)))

	return m, nil
}

// reserve waits until n buffer bytes fit the buffer limit and returns the
// function that gives them back.
func (s *Store) reserve(ctx context.Context, blob string, n int64) (func(), error) {
	if err := s.rc.AcquireMemory(ctx, n); err != nil {
		if errors.Is(err, ErrBufferLimit) {
			return nil, fmt.Errorf("%w: %s needs %d bytes, limit %d", err, blob, n, s.rc.MemoryLimit())
		}
		return nil, err
	}
	return func() { s.rc.ReleaseMemory(n) }, nil
}

// pipe routes blob traffic through the IO rate limit.
func (s *Store) pipe(ctx context.Context) blobstore.Pipe {
	return blobstore.Pipe{
		Writer: func(w io.Writer) io.Writer { return resource.NewRateLimitedWriter(ctx, w, s.rc) },
		Reader: func(r io.Reader) io.Reader { return resource.NewRateLimitedReader(ctx, r, s.rc) },
	}
}

// encodedSize is the size of t in the binary tensor format.
func encodedSize(t tensor.Any) int64 {
	return 4 + 4*int64(len(t.Shape())) + int64(t.Shape().TotalSize())*int64(t.Kind().Size())
}

func (s *Store) saveTensor(ctx context.Context, blob string, t tensor.Any) (Entry, error) {
	// The encoded form and its compressed copy are alive together.
	done, err := s.reserve(ctx, blob, 2*encodedSize(t))
	if err != nil {
		return Entry{}, err
	}
	defer done()

	var raw bytes.Buffer
	if _, err := t.WriteTo(&raw); err != nil {
		return Entry{}, err
	}
	stored, err := s.compressor.Compress(raw.Bytes())
	if err != nil {
		return Entry{}, err
	}

	d, err := blobstore.WriteBlob(ctx, s.blobs, blob, bytes.NewReader(stored), s.pipe(ctx))
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Kind:       t.Kind().String(),
		Shape:      t.Shape(),
		Blob:       blob,
		RawSize:    int64(raw.Len()),
		StoredSize: d.Size,
		Checksum:   d.CRC32C,
	}, nil
}

// Checkpoint is a loaded set of tensors. The caller owns one reference on
// every tensor.
type Checkpoint struct {
	Manifest *Manifest
	Tensors  map[string]tensor.Any
}

// Release drops the reference held on every tensor.
func (c *Checkpoint) Release() {
	for _, t := range c.Tensors {
		t.Release()
	}
}

// Current returns the name of the committed checkpoint.
func (s *Store) Current(ctx context.Context) (string, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", ErrNoCheckpoint
		}
		return "", fmt.Errorf("checkpoint: read %s: %w", CurrentName, err)
	}
	return path.Dir(strings.TrimSpace(string(data))), nil
}

// Manifest reads the manifest of checkpoint name.
func (s *Store) Manifest(ctx context.Context, name string) (*Manifest, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, s.blobs, manifestPath(name))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read manifest %q: %w", name, err)
	}
	m := &Manifest{}
	if err := s.codec.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest %q: %w", ErrUnsupportedFormat, name, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: manifest version %d", ErrUnsupportedFormat, m.Version)
	}
	return m, nil
}

// List returns the names of all checkpoints with a manifest, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	all, err := s.blobs.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, b := range all {
		if path.Base(b) == ManifestName && path.Dir(b) != "." {
			names = append(names, path.Dir(b))
		}
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes checkpoint name. The current checkpoint cannot be deleted.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	current, err := s.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoCheckpoint) {
		return err
	}
	if current == name {
		return fmt.Errorf("checkpoint: %q is current", name)
	}

	blobs, err := s.blobs.List(ctx, name+"/")
	if err != nil {
		return err
	}
	// Manifest goes first so a partial delete never lists as a checkpoint.
	if err := s.blobs.Delete(ctx, manifestPath(name)); err != nil {
		return err
	}
	for _, b := range blobs {
		if err := s.blobs.Delete(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the committed checkpoint into segments acquired from pool.
func (s *Store) Load(ctx context.Context, pool *memory.Pool) (*Checkpoint, error) {
	name, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.LoadNamed(ctx, name, pool)
}

// LoadNamed reads checkpoint name into segments acquired from pool.
func (s *Store) LoadNamed(ctx context.Context, name string, pool *memory.Pool) (*Checkpoint, error) {
	m, err := s.Manifest(ctx, name)
	if err != nil {
		return nil, err
	}
	compressor, ok := codec.CompressorByName(m.Compression)
	if !ok {
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, m.Compression)
	}

	start := time.Now()
	cp := &Checkpoint{Manifest: m, Tensors: make(map[string]tensor.Any, len(m.Tensors))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range m.Tensors {
		if err := s.rc.AcquireBackground(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer s.rc.ReleaseBackground()
			t, err := s.loadTensor(gctx, entry, compressor, pool)
			if err != nil {
				return fmt.Errorf("checkpoint: load %q: %w", entry.Name, err)
			}
			mu.Lock()
			cp.Tensors[entry.Name] = t
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		cp.Release()
		return nil, err
	}

	s.logger.Info("checkpoint loaded",
		slog.String("name", name),
		slog.Int("tensors", len(cp.Tensors)),
		slog.Duration("elapsed", time.Since(start)))

	return cp, nil
}

func (s *Store) loadTensor(ctx context.Context, e Entry, c codec.Compressor, pool *memory.Pool) (tensor.Any, error) {
	kind, ok := dtype.ParseKind(e.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedFormat, e.Kind)
	}

	done, err := s.reserve(ctx, e.Blob, e.StoredSize+e.RawSize)
	if err != nil {
		return nil, err
	}
	defer done()

	stored, err := blobstore.ReadVerified(ctx, s.blobs, e.Blob, e.digest(), s.pipe(ctx))
	if errors.Is(err, blobstore.ErrCorrupt) {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err != nil {
		return nil, err
	}

	raw, err := c.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if int64(len(raw)) != e.RawSize {
		return nil, fmt.Errorf("%w: %s decodes to %d bytes, want %d", ErrCorrupt, e.Blob, len(raw), e.RawSize)
	}

	br := bytes.NewReader(raw)
	t, err := tensor.ReadAny(br, pool, kind)
	if err != nil {
		return nil, err
	}
	if br.Len() != 0 || !t.Shape().Equal(e.Shape) {
		t.Release()
		return nil, fmt.Errorf("%w: %s does not match shape %v", ErrCorrupt, e.Blob, e.Shape)
	}
	return t, nil
}
