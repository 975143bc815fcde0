//go:build unit || !integration

package util

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestLeavesFlattenJoinedErrors() {
	apiErr := apimodels.NewAPIError(http.StatusBadRequest, "missing uuid")
	apiErr.Code = string(models.MalformedIntent)
	apiErr.Hint = "add a uuid"

	leaves := Leaves(errors.Join(
		errors.New("plain"),
		models.NewBaseError("store down").WithCode(models.DatastoreFailure).WithHint("start mongo"),
		apiErr,
	))
	s.Equal([]ErrorLeaf{
		{Message: "plain"},
		{Message: "store down", Code: string(models.DatastoreFailure), Hint: "start mongo"},
		{Message: "missing uuid", Code: string(models.MalformedIntent), Hint: "add a uuid"},
	}, leaves)
}

func (s *ErrorsTestSuite) TestLeavesOfNil() {
	s.Nil(Leaves(nil))
}

func (s *ErrorsTestSuite) TestPrintErrShowsHints() {
	stderr := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetErr(stderr)

	PrintErr(cmd, errors.Join(
		errors.New("first"),
		models.NewBaseError("second").WithHint("try again"),
	))
	s.Contains(stderr.String(), "first")
	s.Contains(stderr.String(), "second")
	s.Contains(stderr.String(), "Hint:")
	s.Contains(stderr.String(), "try again")
}
