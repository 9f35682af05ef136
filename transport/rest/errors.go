package rest

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
)

var errBadRequest = errors.New("bad request")

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors - domain error reported when validation of a request field fails.
var fieldErrors = map[string]error{
	"Mode":       apperror.ErrInvalidMode,
	"Difficulty": apperror.ErrInvalidDifficulty,
	"Symbol":     apperror.ErrInvalidSymbol,
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if domainErr, ok := fieldErrors[fieldErrs[0].Field()]; ok {
			return domainErr
		}
	}

	return errors.Join(errBadRequest, err)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidPosition),
		errors.Is(err, apperror.ErrInvalidSymbol),
		errors.Is(err, apperror.ErrInvalidDifficulty),
		errors.Is(err, apperror.ErrInvalidMode):
		return http.StatusUnprocessableEntity
	case apperror.IsMoveRejection(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
