package server

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Address           string
	ReadHeaderTimeout time.Duration
	Context           context.Context
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadHeaderTimeout = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address:           ":12345",
		ReadHeaderTimeout: 10 * time.Second,
		Context:           context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
