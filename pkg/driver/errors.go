// SPDX-License-Identifier: BSD-3-Clause

package driver

import "errors"

var (
	// ErrUnsupportedInterface indicates a Bundle has no instance for the
	// requested interface slot.
	ErrUnsupportedInterface = errors.New("driver: unsupported interface")
	// ErrDriverNotRegistered indicates LoadDriver was called with an
	// unknown hardware-type name.
	ErrDriverNotRegistered = errors.New("driver: not registered")
	// ErrAlreadyRegistered indicates Register was called twice for the
	// same hardware-type name.
	ErrAlreadyRegistered = errors.New("driver: already registered")
	// ErrRouteNotFound indicates a vendor passthru call named a route the
	// interface does not expose.
	ErrRouteNotFound = errors.New("driver: vendor passthru route not found")
	// ErrMethodNotAllowed indicates a vendor passthru call used an HTTP
	// method the route does not whitelist.
	ErrMethodNotAllowed = errors.New("driver: vendor passthru method not allowed")
)
