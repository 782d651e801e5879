// SPDX-License-Identifier: BSD-3-Clause

package log

import "errors"

// ErrLoggerConfiguration indicates an invalid logger configuration.
var ErrLoggerConfiguration = errors.New("invalid logger configuration")
