package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrClassroomNotFound    = errors.New("classroom not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrMaterialNotFound     = errors.New("material not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: email already registered")
	ErrInvalidRoomCode      = errors.New("invalid room code")
	ErrAlreadyMember        = errors.New("the user is already a member")
	ErrAlreadyRequested     = errors.New("the join request is already received")
	ErrNotMember            = errors.New("the user is not a member of this classroom")
	ErrPasswordMismatch     = errors.New("old password does not match")
	ErrInternalServer       = errors.New("internal server error")
)
