// SPDX-License-Identifier: BSD-3-Clause

package coreerrors

import "errors"

// Kind classifies a sentinel error for propagation purposes.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors not in this taxonomy.
	KindUnknown Kind = iota
	// KindClient marks a malformed request or a reference to something missing.
	KindClient
	// KindConcurrency marks a transient serialisation failure, safe to retry.
	KindConcurrency
	// KindDriver marks a failure reported by the driver stack.
	KindDriver
	// KindStorage marks a DB or object-store I/O failure.
	KindStorage
	// KindInternal marks an unexpected, never-silently-swallowed failure.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "ClientError"
	case KindConcurrency:
		return "ConcurrencyError"
	case KindDriver:
		return "DriverError"
	case KindStorage:
		return "StorageError"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Client errors: the request itself is malformed or refers to missing things.
var (
	ErrInvalidParameterValue    = errors.New("invalid parameter value")
	ErrMissingParameterValue    = errors.New("missing parameter value")
	ErrNodeNotFound             = errors.New("node not found")
	ErrPortNotFound             = errors.New("port not found")
	ErrPortgroupNotFound        = errors.New("portgroup not found")
	ErrInvalidStateRequested    = errors.New("invalid state requested")
	ErrUnsupportedDriverExtension = errors.New("unsupported driver extension")
	ErrNodeInMaintenance        = errors.New("node is in maintenance")
	ErrNodeAssociated           = errors.New("node is associated with an instance")
	ErrMACAlreadyExists         = errors.New("MAC address already exists")
	ErrPortgroupNotEmpty        = errors.New("portgroup is not empty")
)

// Concurrency errors: transient serialisation failures.
var (
	ErrNodeLocked            = errors.New("node is locked by another conductor")
	ErrNoFreeConductorWorker = errors.New("no free conductor worker")
)

// Driver errors: failures reported by the driver stack.
var (
	ErrDriverNotFound             = errors.New("driver not found")
	ErrPowerStateFailure          = errors.New("power state failure")
	ErrInstanceDeployFailure      = errors.New("instance deploy failure")
	ErrNodeCleaningFailure        = errors.New("node cleaning failure")
	ErrHardwareInspectionFailure  = errors.New("hardware inspection failure")
	ErrConsoleError               = errors.New("console error")
	ErrFailedToUpdateMacOnPort    = errors.New("failed to update MAC on port")
	ErrFailedToUpdateDHCPOptOnPort = errors.New("failed to update DHCP options on port")
)

// Storage errors: DB or object-store I/O.
var (
	ErrObjectStoreOperation = errors.New("object store operation failed")
	ErrStorageData          = errors.New("storage data error")
)

// Internal errors: unexpected, never silently swallowed.
var ErrInternal = errors.New("internal error")

var kindOf = map[error]Kind{
	ErrInvalidParameterValue:       KindClient,
	ErrMissingParameterValue:       KindClient,
	ErrNodeNotFound:                KindClient,
	ErrPortNotFound:                KindClient,
	ErrPortgroupNotFound:           KindClient,
	ErrInvalidStateRequested:       KindClient,
	ErrUnsupportedDriverExtension:  KindClient,
	ErrNodeInMaintenance:           KindClient,
	ErrNodeAssociated:              KindClient,
	ErrMACAlreadyExists:            KindClient,
	ErrPortgroupNotEmpty:           KindClient,
	ErrNodeLocked:                  KindConcurrency,
	ErrNoFreeConductorWorker:       KindConcurrency,
	ErrDriverNotFound:              KindDriver,
	ErrPowerStateFailure:           KindDriver,
	ErrInstanceDeployFailure:       KindDriver,
	ErrNodeCleaningFailure:         KindDriver,
	ErrHardwareInspectionFailure:   KindDriver,
	ErrConsoleError:                KindDriver,
	ErrFailedToUpdateMacOnPort:     KindDriver,
	ErrFailedToUpdateDHCPOptOnPort: KindDriver,
	ErrObjectStoreOperation:        KindStorage,
	ErrStorageData:                 KindStorage,
	ErrInternal:                    KindInternal,
}

// KindOf reports which taxonomy Kind err belongs to, walking the err chain
// with errors.Is against every known sentinel. It returns KindUnknown for
// errors outside this taxonomy (e.g. context.Canceled).
func KindOf(err error) Kind {
	for sentinel, kind := range kindOf {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}
