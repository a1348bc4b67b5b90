package types

import "errors"

var (
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrInvalidRadius       = errors.New("radius must be greater than 0 and at most 50 km")
	ErrInvalidTimeframe    = errors.New("minutes must be a multiple of 10 between 10 and 120")
	ErrInvalidStatus       = errors.New("invalid redirection status")
	ErrInvalidGrid         = errors.New("invalid grid")
	ErrPositionNotFound    = errors.New("recommended position not found")
	ErrRedirectionNotFound = errors.New("redirection plan not found")
	ErrNoPath              = errors.New("no path found")
	ErrNoFrame             = errors.New("no simulation frame received yet")
	ErrEmptyPlace          = errors.New("source and destination are required")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("requested item not found")

	ErrDatabaseFailed = errors.New("database operation failed")
	ErrPublishFailed  = errors.New("failed to publish message")
)
