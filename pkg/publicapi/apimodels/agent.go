package apimodels

import "github.com/dsx-project/dsx/pkg/models"

const (
	HTTPHeaderDSXGitVersion = "X-DSX-Git-Version"
	HTTPHeaderDSXGitCommit  = "X-DSX-Git-Commit"
	HTTPHeaderDSXBuildDate  = "X-DSX-Build-Date"
	HTTPHeaderDSXBuildOS    = "X-DSX-Build-OS"
	HTTPHeaderDSXArch       = "X-DSX-Arch"
	HTTPHeaderInstanceID    = "X-DSX-Instance-ID"
)

// IsAliveResponse is the response to the IsAlive request.
type IsAliveResponse struct {
	Status string
}

func (r *IsAliveResponse) IsReady() bool {
	if r != nil && r.Status == "OK" {
		return true
	}
	return false
}

// GetVersionResponse is the response to the Version request.
type GetVersionResponse struct {
	*models.BuildVersionInfo
}

// GetInstanceResponse describes the instance serving the request and the
// state of its backends.
type GetInstanceResponse struct {
	InstanceID     string
	Model          string
	RoutingPrefix  string
	StoreType      string
	StoreAvailable bool
	BusType        string
	BusAvailable   bool
	Connections    int
}
