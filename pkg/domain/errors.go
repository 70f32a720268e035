package domain

import "errors"

// ErrNotFound is returned when a record cannot be found in a store.
var ErrNotFound = errors.New("not found")

// ErrPollLength is returned when a poll is created with a length outside
// [MinPollLength, MaxPollLength] days.
var ErrPollLength = errors.New("poll length should be between 1 and 30 days")

// ErrPollEnded is returned when a response is recorded after the poll closed.
var ErrPollEnded = errors.New("poll has ended")

// ErrInvalidOption is returned when a response references an option that does
// not belong to the poll.
var ErrInvalidOption = errors.New("option does not belong to poll")

// ErrUnsupportedChain is returned for frame transactions on unknown chains.
var ErrUnsupportedChain = errors.New("chain not supported")
