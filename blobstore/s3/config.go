package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type options struct {
	prefix       string
	region       string
	endpoint     string
	usePathStyle bool
	upload       UploadConfig
}

// Option configures New.
type Option func(*options)

// WithPrefix sets the root prefix prepended to all keys.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the default AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint and enables
// path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
		o.usePathStyle = true
	}
}

// WithUploadConfig replaces the default upload settings.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

// New loads the default AWS configuration (environment, shared config,
// instance role) and returns a Store for bucket.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	opts := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = aws.String(opts.endpoint)
		}
		o.UsePathStyle = opts.usePathStyle
	})

	return NewStore(client, bucket, opts.prefix, func(u *UploadConfig) { *u = opts.upload }), nil
}
