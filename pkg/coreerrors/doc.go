// SPDX-License-Identifier: BSD-3-Clause

// Package coreerrors defines the conductor's error taxonomy: a small set of
// Kind values (ClientError, ConcurrencyError, DriverError, StorageError,
// InternalError) plus the concrete sentinel errors that belong to each.
// Callers test membership with errors.Is against the sentinel, and ask
// which kind an error belongs to with KindOf for propagation decisions
// (RPC entry points surface Client/Concurrency errors verbatim; Driver
// errors get folded into a workflow FAIL transition instead).
package coreerrors
