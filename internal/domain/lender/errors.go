package lender

import "errors"

var (
	ErrNotFound            = errors.New("lender preference not found")
	ErrInsufficientCapital = errors.New("lender has insufficient available capital")
	ErrInvalidOwner        = errors.New("lender preference must have exactly one owner")
)
