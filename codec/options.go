package codec

type Option func(*Options)

type Options struct {
	Comma     rune
	TrimSpace bool
}

func WithComma(comma rune) Option {
	return func(o *Options) {
		o.Comma = comma
	}
}

// WithTrimSpace strips surrounding white space from every cell before decoding.
func WithTrimSpace() Option {
	return func(o *Options) {
		o.TrimSpace = true
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Comma: ',',
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
