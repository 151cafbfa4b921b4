package ingest

import (
	"time"

	"github.com/w-h-a/tabular/codec"
)

type Option func(*Options)

type Options struct {
	// Concurrency caps the inserts in flight for a single ingest.
	Concurrency int
	// Timeout bounds a whole ingest, decode and inserts included. Zero disables it.
	Timeout time.Duration
	Codec   *codec.Codec
}

func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

func WithCodec(c *codec.Codec) Option {
	return func(o *Options) {
		o.Codec = c
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Concurrency: 8,
		Timeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.Codec == nil {
		options.Codec = codec.New()
	}
	return options
}
