package storage

import "errors"

var (
	// ErrUnavailable means the device has no usable durable storage.
	ErrUnavailable = errors.New("local storage unavailable")
	// ErrSerialization means a record cannot be represented in storage.
	ErrSerialization = errors.New("record is not serializable")
	ErrNotFound      = errors.New("record not found")
)
