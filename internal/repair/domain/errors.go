package domain

import "errors"

var (
	ErrRequestNotFound   = errors.New("repair request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrProfileIncomplete = errors.New("profile is missing full name or phone")
	ErrEmptyTimeSlot     = errors.New("proposed time slot is empty")
	ErrInvalidCategory   = errors.New("invalid request category")
	ErrInvalidUrgency    = errors.New("invalid request urgency")
)
