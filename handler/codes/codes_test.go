package codes

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lendcore/core"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	for _, tc := range []struct {
		err    error
		code   core.ErrorCode
		status int
	}{
		{errors.New("boom"), core.ErrUnknown, http.StatusInternalServerError},
		{core.ErrBankNotFound, core.ErrBankNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: sol", core.ErrOracleUnusable), core.ErrOracleUnusable, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: amount", core.ErrInvalidArgument), core.ErrInvalidArgument, http.StatusBadRequest},
		{core.ErrConcurrentModification, core.ErrConcurrentModification, http.StatusConflict},
		{core.ErrRiskEngineRejection, core.ErrRiskEngineRejection, http.StatusUnprocessableEntity},
	} {
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}
