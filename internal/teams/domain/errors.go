package domain

import "errors"

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrAlreadyInTeam  = errors.New("member already belongs to a team")
	ErrInvalidRole    = errors.New("invalid role")
	ErrLastAdmin      = errors.New("team must keep at least one admin")
)
