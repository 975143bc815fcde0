//go:build unit || !integration

package system

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/logger"
)

type SystemCleanupSuite struct {
	suite.Suite
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestSystemCleanupSuite(t *testing.T) {
	suite.Run(t, new(SystemCleanupSuite))
}

// Before each test
func (suite *SystemCleanupSuite) SetupTest() {
	logger.ConfigureTestLogging(suite.T())
}

func (suite *SystemCleanupSuite) TestCleanupManager() {
	var calls atomic.Int32
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "cleanup")

	cm := NewCleanupManager()
	cm.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})
	cm.RegisterCallback(func() error {
		calls.Add(1)
		return errors.New("failed to close")
	})
	cm.RegisterCallbackWithContext(func(ctx context.Context) error {
		if ctx.Value(ctxKey{}) == "cleanup" {
			calls.Add(1)
		}
		return nil
	})

	cm.Cleanup(ctx)
	require.Equal(suite.T(), int32(3), calls.Load(), "cleanup handler failed to run registered functions")

	// later registrations and a second cleanup are ignored
	cm.RegisterCallback(func() error {
		calls.Add(1)
		return nil
	})
	cm.Cleanup(ctx)
	require.Equal(suite.T(), int32(3), calls.Load())
}
