package models

import (
	"fmt"
	"time"
)

// BuildVersionInfo describes the build of a dsx binary, client or instance.
type BuildVersionInfo struct {
	Major      string    `json:"Major,omitempty"`
	Minor      string    `json:"Minor,omitempty"`
	GitVersion string    `json:"GitVersion"`
	GitCommit  string    `json:"GitCommit"`
	BuildDate  time.Time `json:"BuildDate"`
	GOOS       string    `json:"GOOS"`
	GOARCH     string    `json:"GOARCH"`
}

func (v BuildVersionInfo) String() string {
	return fmt.Sprintf("%s (%s, %s/%s)", v.GitVersion, v.GitCommit, v.GOOS, v.GOARCH)
}
