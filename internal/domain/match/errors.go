package match

import "errors"

var (
	ErrNotFound    = errors.New("match not found")
	ErrExpired     = errors.New("offer expired")
	ErrUnavailable = errors.New("offer is no longer pending")
	ErrNotOfferee  = errors.New("lender is not the recipient of this offer")
)
