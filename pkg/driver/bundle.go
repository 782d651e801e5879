// SPDX-License-Identifier: BSD-3-Clause

package driver

import "fmt"

// Bundle is a named collection of interface instances: a hardware type's
// complete driver. Any slot may be left nil to represent an unsupported
// optional interface.
type Bundle struct {
	Name string

	Power      PowerInterface
	Management ManagementInterface
	Boot       BootInterface
	Deploy     DeployInterface
	Console    ConsoleInterface
	Vendor     VendorInterface
	RAID       RAIDInterface
	BIOS       BIOSInterface
	Inspect    InspectInterface
	Network    NetworkInterface
	Storage    StorageInterface
}

// RequirePower returns the power interface or ErrUnsupportedInterface.
func (b *Bundle) RequirePower() (PowerInterface, error) {
	if b.Power == nil {
		return nil, fmt.Errorf("%w: %s has no power interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Power, nil
}

// RequireManagement returns the management interface or ErrUnsupportedInterface.
func (b *Bundle) RequireManagement() (ManagementInterface, error) {
	if b.Management == nil {
		return nil, fmt.Errorf("%w: %s has no management interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Management, nil
}

// RequireBoot returns the boot interface or ErrUnsupportedInterface.
func (b *Bundle) RequireBoot() (BootInterface, error) {
	if b.Boot == nil {
		return nil, fmt.Errorf("%w: %s has no boot interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Boot, nil
}

// RequireDeploy returns the deploy interface or ErrUnsupportedInterface.
func (b *Bundle) RequireDeploy() (DeployInterface, error) {
	if b.Deploy == nil {
		return nil, fmt.Errorf("%w: %s has no deploy interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Deploy, nil
}

// RequireConsole returns the console interface or ErrUnsupportedInterface.
func (b *Bundle) RequireConsole() (ConsoleInterface, error) {
	if b.Console == nil {
		return nil, fmt.Errorf("%w: %s has no console interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Console, nil
}

// RequireVendor returns the vendor interface or ErrUnsupportedInterface.
func (b *Bundle) RequireVendor() (VendorInterface, error) {
	if b.Vendor == nil {
		return nil, fmt.Errorf("%w: %s has no vendor interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Vendor, nil
}

// RequireRAID returns the RAID interface or ErrUnsupportedInterface.
func (b *Bundle) RequireRAID() (RAIDInterface, error) {
	if b.RAID == nil {
		return nil, fmt.Errorf("%w: %s has no RAID interface", ErrUnsupportedInterface, b.Name)
	}
	return b.RAID, nil
}

// RequireBIOS returns the BIOS interface or ErrUnsupportedInterface.
func (b *Bundle) RequireBIOS() (BIOSInterface, error) {
	if b.BIOS == nil {
		return nil, fmt.Errorf("%w: %s has no BIOS interface", ErrUnsupportedInterface, b.Name)
	}
	return b.BIOS, nil
}

// RequireInspect returns the inspect interface or ErrUnsupportedInterface.
func (b *Bundle) RequireInspect() (InspectInterface, error) {
	if b.Inspect == nil {
		return nil, fmt.Errorf("%w: %s has no inspect interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Inspect, nil
}

// RequireNetwork returns the network interface or ErrUnsupportedInterface.
func (b *Bundle) RequireNetwork() (NetworkInterface, error) {
	if b.Network == nil {
		return nil, fmt.Errorf("%w: %s has no network interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Network, nil
}

// RequireStorage returns the storage interface or ErrUnsupportedInterface.
func (b *Bundle) RequireStorage() (StorageInterface, error) {
	if b.Storage == nil {
		return nil, fmt.Errorf("%w: %s has no storage interface", ErrUnsupportedInterface, b.Name)
	}
	return b.Storage, nil
}

// InterfaceByName looks up the named capability slot ("power", "management",
// "boot", "deploy", "console", "vendor", "raid", "bios", "inspect",
// "network", "storage"), returning nil if absent or the name is unknown.
func (b *Bundle) InterfaceByName(name string) Interface {
	switch name {
	case "power":
		if b.Power == nil {
			return nil
		}
		return b.Power
	case "management":
		if b.Management == nil {
			return nil
		}
		return b.Management
	case "boot":
		if b.Boot == nil {
			return nil
		}
		return b.Boot
	case "deploy":
		if b.Deploy == nil {
			return nil
		}
		return b.Deploy
	case "console":
		if b.Console == nil {
			return nil
		}
		return b.Console
	case "vendor":
		if b.Vendor == nil {
			return nil
		}
		return b.Vendor
	case "raid":
		if b.RAID == nil {
			return nil
		}
		return b.RAID
	case "bios":
		if b.BIOS == nil {
			return nil
		}
		return b.BIOS
	case "inspect":
		if b.Inspect == nil {
			return nil
		}
		return b.Inspect
	case "network":
		if b.Network == nil {
			return nil
		}
		return b.Network
	case "storage":
		if b.Storage == nil {
			return nil
		}
		return b.Storage
	default:
		return nil
	}
}
