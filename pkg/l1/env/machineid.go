// Package env provides host identity for controllers.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID keys the protected machine ID so the raw ID never leaves the host.
const AppID = "robotalks"

// MachineID returns a stable ID of this host, falling back to the host
// name when the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}
