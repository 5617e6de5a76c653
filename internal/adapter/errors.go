package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrPayloadTooLarge     = errors.New("envelope rejected as too large")
	ErrInternalServerError = errors.New("envelope server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrUnexpectedResponse  = errors.New("unexpected server response")
)
