// Package version reports the build version of the dsx binary. The values
// are stamped at build time with -ldflags "-X".
package version

import (
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
)

const DevelopmentGitVersion = "v0.0.0-dev"

var (
	GITVERSION = DevelopmentGitVersion
	GITCOMMIT  = ""
	BUILDDATE  = ""
)

// Get returns the version of this binary.
func Get() *models.BuildVersionInfo {
	info := &models.BuildVersionInfo{
		GitVersion: GITVERSION,
		GitCommit:  GITCOMMIT,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
	if BUILDDATE != "" {
		date, err := time.Parse(time.RFC3339, BUILDDATE)
		if err != nil {
			log.Debug().Err(err).Msgf("invalid build date %q", BUILDDATE)
		} else {
			info.BuildDate = date
		}
	}
	parts := strings.SplitN(strings.TrimPrefix(GITVERSION, "v"), ".", 3)
	if len(parts) >= 2 {
		info.Major, info.Minor = parts[0], parts[1]
	}
	return info
}
