// SPDX-License-Identifier: BSD-3-Clause

package conductor

import "errors"

var (
	// ErrHostRequired is returned by New if no hostname was configured.
	ErrHostRequired = errors.New("conductor: host is required")
	// ErrNoHardwareTypes is returned by New if the conductor was not given
	// at least one registered hardware type to announce.
	ErrNoHardwareTypes = errors.New("conductor: at least one hardware type is required")
	// ErrUnknownOperation is returned by the RPC dispatcher for a subject
	// with no registered handler.
	ErrUnknownOperation = errors.New("conductor: unknown operation")
	// ErrForwardingUnavailable is returned when a request cannot be relayed
	// to the node's owning conductor: the hash ring names no owner, or the
	// forwarded request itself fails.
	ErrForwardingUnavailable = errors.New("conductor: cannot forward to owning conductor")
)
