// SPDX-License-Identifier: BSD-3-Clause

package objectstore

import "errors"

// ErrOperationFailed wraps any backend failure surfaced through Store; the
// core reports it as coreerrors.ErrObjectStoreOperation.
var ErrOperationFailed = errors.New("objectstore: operation failed")
