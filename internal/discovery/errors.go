package discovery

import "errors"

// errNoModulesFound is returned when no candidate protocol/addressing
// combination produced a responding module.
var errNoModulesFound = errors.New("discovery: no responding modules found on any candidate protocol")
