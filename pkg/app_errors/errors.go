package apperrors

import "errors"

var (
	ErrFilmNotFound      = errors.New("film not found")
	ErrSoldOut           = errors.New("tickets are already sold out")
	ErrNotSoldOut        = errors.New("film is not sold out")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUpstream          = errors.New("films api request failed")
	ErrMalformedResponse = errors.New("malformed films api response")
	ErrOverrideNotFound  = errors.New("ticket override not found")
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)
