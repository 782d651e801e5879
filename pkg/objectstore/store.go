// SPDX-License-Identifier: BSD-3-Clause

// Package objectstore declares the narrow object-store contract the Step
// Executor's store_configdrive wrapper consumes: create an object and mint
// a time-limited temporary URL for it. It does not implement a concrete
// backend; deployments wire in whichever object store they use (Swift,
// S3-compatible, ...).
package objectstore

import (
	"context"
	"time"
)

// Store is the object-store collaborator consumed when a configdrive
// exceeds the inline-storage size threshold.
type Store interface {
	// CreateObject uploads body under container/name. If deleteAfter is
	// non-zero the backend is asked to expire the object automatically.
	CreateObject(ctx context.Context, container, name string, body []byte, deleteAfter time.Duration) error
	// GetTempURL returns a URL for container/name valid for ttl.
	GetTempURL(ctx context.Context, container, name string, ttl time.Duration) (string, error)
}
