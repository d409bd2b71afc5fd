package arena

import (
	"errors"

	"github.com/park285/checkers-arena/internal/room"
)

// Errors
var (
	ErrInvalidArguments = errf("invalid arguments")
	ErrRoomNotFound     = errf("room not found")
	ErrRoomFull         = errf("room is full")
	ErrNotSeated        = errf("not seated in this room")
	ErrNotYourTurn      = errf("not your turn")
	ErrIllegalMove      = errf("illegal move")
	ErrNotInProgress    = errf("game is not in progress")
	ErrCodeAllocation   = errf("room code allocation failed")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

var registryErrors = map[error]error{
	room.ErrRoomNotFound:     ErrRoomNotFound,
	room.ErrRoomFull:         ErrRoomFull,
	room.ErrNotSeated:        ErrNotSeated,
	room.ErrNotYourTurn:      ErrNotYourTurn,
	room.ErrIllegalMove:      ErrIllegalMove,
	room.ErrNotInProgress:    ErrNotInProgress,
	room.ErrCodeAllocation:   ErrCodeAllocation,
	room.ErrInvalidArguments: ErrInvalidArguments,
}

func translate(err error) error {
	for from, to := range registryErrors {
		if errors.Is(err, from) {
			return to
		}
	}
	return err
}

// Kind classifies err for transports.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
)

func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidArguments), errors.Is(err, ErrIllegalMove):
		return KindInvalid
	case errors.Is(err, ErrRoomNotFound):
		return KindNotFound
	case errors.Is(err, ErrRoomFull), errors.Is(err, ErrNotSeated), errors.Is(err, ErrNotYourTurn),
		errors.Is(err, ErrNotInProgress), errors.Is(err, ErrCodeAllocation):
		return KindConflict
	default:
		return KindInternal
	}
}

var errorKeys = map[error]string{
	ErrInvalidArguments: "errors.invalid_args",
	ErrRoomNotFound:     "errors.room_not_found",
	ErrRoomFull:         "errors.room_full",
	ErrNotSeated:        "errors.not_seated",
	ErrNotYourTurn:      "errors.not_your_turn",
	ErrIllegalMove:      "errors.illegal_move",
	ErrNotInProgress:    "errors.not_in_progress",
	ErrCodeAllocation:   "errors.code_allocation",
}

// ErrorMessage renders the player-facing text for err.
func (s *Service) ErrorMessage(err error) string {
	for sentinel, key := range errorKeys {
		if errors.Is(err, sentinel) {
			return s.catalog.Text(key, nil)
		}
	}
	return s.catalog.Text("errors.internal", nil)
}
