package models

import "errors"

var (
	// ErrUnknownUnit is returned when a unit kind name or index is not recognised
	ErrUnknownUnit = errors.New("unknown unit kind")
	// ErrInvalidTech is returned for negative research levels
	ErrInvalidTech = errors.New("invalid tech levels")
)
