package store

import (
	"context"
	"errors"
)

type Store interface {
	FeedStore
	Init(context.Context) error
	Close(context.Context) error
}

var (
	ErrFeedNotFound = errors.New("feed not found")
)
