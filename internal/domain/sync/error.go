package sync

import "errors"

var (
	ErrOffline           = errors.New("Cannot batch sync while offline")
	ErrNetworkOffline    = errors.New("device is offline")
	ErrServerUnreachable = errors.New("Server is unreachable")
	ErrAlreadySyncing    = errors.New("Sync already in progress")
	ErrAuthFailed        = errors.New("authorization failed, sync paused until credentials change")
	ErrSchemaNotFound    = errors.New("schema not found")
)
