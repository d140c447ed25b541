package service

import "errors"

var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrBracketExists       = errors.New("bracket already built for this competition")
	ErrNotApproved         = errors.New("registration is not approved")
	ErrCompetitionFinished = errors.New("competition already finished")
)
