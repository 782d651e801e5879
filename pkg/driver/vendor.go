// SPDX-License-Identifier: BSD-3-Clause

package driver

import "fmt"

// DispatchVendorPassthru looks up routeName on vendor, checks the HTTP
// method whitelist, and invokes the route's Func. The core is responsible
// for upgrading the task's lock before calling this when the route
// indicates a mutating method, and for spawning the call onto the worker
// pool when the route is Async.
func DispatchVendorPassthru(vendor VendorInterface, t TaskContext, routeName, httpMethod string, args map[string]any) (any, error) {
	routes := vendor.Routes()
	route, ok := routes[routeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, routeName)
	}
	if !route.AllowsMethod(httpMethod) {
		return nil, fmt.Errorf("%w: %s does not allow %s", ErrMethodNotAllowed, routeName, httpMethod)
	}
	return route.Func(t, args)
}
