// Package env provides the runtime environment shared by the binaries.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an ID identifying the machine, hashed for this
// application so the raw machine ID is never published. It falls back
// to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID("scope.go")
	if err == nil {
		return id[:12]
	}
	glog.Warningf("machine id: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "scope"
}
