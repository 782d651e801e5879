// SPDX-License-Identifier: BSD-3-Clause

package consoleproxy

import "errors"

// ErrConsoleFailed wraps any proxy failure; the core reports it as
// coreerrors.ErrConsoleError.
var ErrConsoleFailed = errors.New("consoleproxy: operation failed")
