package codes

import (
	"errors"
	"net/http"

	"lendcore/core"
)

// Code error code of err, ErrUnknown when it carries none
func Code(err error) core.ErrorCode {
	var code core.ErrorCode
	if errors.As(err, &code) {
		return code
	}

	return core.ErrUnknown
}

// Status http status for err
func Status(err error) int {
	switch Code(err) {
	case core.ErrUnknown:
		return http.StatusInternalServerError
	case core.ErrBankNotFound, core.ErrObligationNotFound:
		return http.StatusNotFound
	case core.ErrInvalidArgument, core.ErrInvalidBankConfig:
		return http.StatusBadRequest
	case core.ErrConcurrentModification:
		return http.StatusConflict
	case core.ErrOracleUnusable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}
