package tiktok

import "errors"

var (
	ErrNotFound        = errors.New("tiktok: not found")
	ErrRateLimited     = errors.New("tiktok: rate limited")
	ErrInvalidResponse = errors.New("tiktok: invalid response")
)
