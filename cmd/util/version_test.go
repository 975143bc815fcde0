//go:build unit || !integration

package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/version"
)

type VersionTestSuite struct {
	suite.Suite
}

func TestVersionTestSuite(t *testing.T) {
	suite.Run(t, new(VersionTestSuite))
}

func v(gitVersion string) *models.BuildVersionInfo {
	return &models.BuildVersionInfo{GitVersion: gitVersion}
}

func (s *VersionTestSuite) TestEnsureValidVersion() {
	ctx := context.Background()
	s.NoError(EnsureValidVersion(ctx, v("v1.2.0"), v("v1.2.0")))
	s.ErrorContains(EnsureValidVersion(ctx, v("v1.2.0"), v("v1.3.0")), "upgrade your client")
	s.ErrorContains(EnsureValidVersion(ctx, v("v1.3.0"), v("v1.2.0")), "update the instance")
}

func (s *VersionTestSuite) TestSkipsUncomparableVersions() {
	ctx := context.Background()
	s.NoError(EnsureValidVersion(ctx, nil, v("v1.2.0")))
	s.NoError(EnsureValidVersion(ctx, v(version.DevelopmentGitVersion), v("v9.0.0")))
	s.NoError(EnsureValidVersion(ctx, v("v1.2.0"), v("not-a-version")))
}
