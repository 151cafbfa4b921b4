package server

import "context"

type Server interface {
	// Run serves until Stop is called or the listener fails.
	Run() error
	Stop(ctx context.Context) error
	String() string
}
