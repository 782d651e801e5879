// SPDX-License-Identifier: BSD-3-Clause

package configdrive

import "errors"

var (
	// ErrBuildFailed wraps any failure constructing the ISO image.
	ErrBuildFailed = errors.New("configdrive: build failed")
	// ErrEmptyPayload indicates Data had no user_data, network_data, or
	// vendor_data to render; meta_data alone is not a valid configdrive.
	ErrEmptyPayload = errors.New("configdrive: empty payload")
)
