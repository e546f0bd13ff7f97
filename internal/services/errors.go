// Package services defines the business logic for the feed, engagement,
// messaging, profiles, and verification. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrPropertyNotFound indicates that the requested property post does not
	// exist or is not accessible to the current user.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrConversationNotFound indicates that the requested conversation does
	// not exist or the current user is not a participant.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrTeamNotFound indicates that the requested search team does not exist
	// or the current user is not a member.
	ErrTeamNotFound = errors.New("team not found")

	// ErrSharedPropertyNotFound indicates that the shared listing does not
	// exist within the team.
	ErrSharedPropertyNotFound = errors.New("shared property not found")

	// ErrEmptyText is returned when a message or comment body is empty after
	// trimming.
	ErrEmptyText = errors.New("text is empty")

	// ErrTooLong is returned when a text field exceeds the maximum configured
	// length limit.
	ErrTooLong = errors.New("text too long")

	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrNotPostOwner is returned when a user attempts to delete a post they
	// do not own.
	ErrNotPostOwner = errors.New("not the post owner")

	// ErrInvalidPost is returned when a post creation request is missing
	// required fields for its type.
	ErrInvalidPost = errors.New("invalid post")

	// ErrVerificationPending is returned when a verification submission
	// targets a property that is already pending or verified.
	ErrVerificationPending = errors.New("verification already pending")

	// ErrInvalidReport is returned when a verification report is missing
	// checklist confirmations or evidence.
	ErrInvalidReport = errors.New("invalid verification report")
)
