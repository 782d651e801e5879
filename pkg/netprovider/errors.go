// SPDX-License-Identifier: BSD-3-Clause

package netprovider

import "errors"

var (
	// ErrUpdateMacFailed wraps a failed UpdatePortAddress call; the core
	// reports it as coreerrors.ErrFailedToUpdateMacOnPort.
	ErrUpdateMacFailed = errors.New("netprovider: failed to update MAC on port")
	// ErrUpdateDHCPOptFailed wraps a failed UpdatePortDHCPOpts call; the
	// core reports it as coreerrors.ErrFailedToUpdateDHCPOptOnPort.
	ErrUpdateDHCPOptFailed = errors.New("netprovider: failed to update DHCP options on port")
)
