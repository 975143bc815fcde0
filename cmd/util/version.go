package util

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/client"
	"github.com/dsx-project/dsx/pkg/version"
)

type Versions struct {
	ClientVersion *models.BuildVersionInfo `json:"clientVersion,omitempty"`
	ServerVersion *models.BuildVersionInfo `json:"serverVersion,omitempty"`
}

// GetAllVersions returns the client build along with the build reported by
// the instance. ClientVersion is set even when the instance is unreachable.
func GetAllVersions(ctx context.Context, api *client.Client) (Versions, error) {
	versions := Versions{ClientVersion: version.Get()}
	response, err := api.Version(ctx)
	if err != nil {
		return versions, errors.Wrap(err, "could not get instance version")
	}
	versions.ServerVersion = response.BuildVersionInfo
	return versions, nil
}

// EnsureValidVersion fails when the client and the instance were built from
// different releases. Development builds and versions that do not parse are
// let through with a log line.
func EnsureValidVersion(ctx context.Context, clientVersion, serverVersion *models.BuildVersionInfo) error {
	c, ok := comparableVersion(ctx, "client", clientVersion)
	if !ok {
		return nil
	}
	s, ok := comparableVersion(ctx, "instance", serverVersion)
	if !ok {
		return nil
	}
	switch c.Compare(s) {
	case -1:
		return fmt.Errorf("instance version %s is newer than client version %s, please upgrade your client",
			serverVersion.GitVersion, clientVersion.GitVersion)
	case 1:
		return fmt.Errorf("client version %s is newer than instance version %s, please ask your operator to update the instance",
			clientVersion.GitVersion, serverVersion.GitVersion)
	}
	return nil
}

func comparableVersion(ctx context.Context, side string, v *models.BuildVersionInfo) (*semver.Version, bool) {
	logger := log.Ctx(ctx).With().Str("side", side).Logger()
	if v == nil {
		logger.Warn().Msg("No version reported, skipping version check")
		return nil, false
	}
	if v.GitVersion == version.DevelopmentGitVersion {
		logger.Debug().Msg("Development version, skipping version check")
		return nil, false
	}
	parsed, err := semver.NewVersion(v.GitVersion)
	if err != nil {
		logger.Warn().Err(err).Str("version", v.GitVersion).Msg("Unable to parse version, skipping version check")
		return nil, false
	}
	return parsed, true
}
