package cmderr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cms-egamma/egdqm/cmd/internal/cmderr"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	cause := errors.New("3 runs failed")

	require.Zero(t, cmderr.Code(nil))
	require.Equal(t, cmderr.CodeFailure, cmderr.Code(cause))
	require.Equal(t, cmderr.CodePartial, cmderr.Code(cmderr.Partial(cause)))
	require.Equal(t, cmderr.CodePartial, cmderr.Code(fmt.Errorf("download: %w", cmderr.Partial(cause))))
	require.Equal(t, 7, cmderr.Code(cmderr.ExitErr{Code: 7, Cause: cause}))

	require.ErrorIs(t, cmderr.Partial(cause), cause)
	require.EqualError(t, cmderr.Partial(cause), cause.Error())
}
