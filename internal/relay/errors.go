// internal/relay/errors.go
package relay

import (
	"errors"

	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/jason-s-yu/gameroom/internal/resolver"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotParticipant   = errors.New("not a participant of this room")
	ErrRoomNotReady     = errors.New("room is still waiting for a guest")
	ErrSnapshotRejected = errors.New("state snapshots are not accepted, send a move")
	ErrPersistence      = errors.New("failed to persist the update")
	ErrRoomBusy         = errors.New("room is busy, try again")
	ErrRateLimited      = errors.New("too many messages")
	ErrBadRequest       = errors.New("bad request")
	ErrClosed           = errors.New("relay is shutting down")
)

// Error codes carried by error events.
const (
	CodeRoomNotFound     = "room_not_found"
	CodeNotParticipant   = "not_participant"
	CodeRoomNotReady     = "room_not_ready"
	CodeIllegalMove      = "illegal_move"
	CodeVariantMismatch  = "variant_mismatch"
	CodeSnapshotRejected = "snapshot_rejected"
	CodePersistence      = "persistence_failed"
	CodeRoomBusy         = "room_busy"
	CodeRateLimited      = "rate_limited"
	CodeBadRequest       = "bad_request"
)

var codes = []struct {
	target error
	code   string
	// detail keeps the wrapped reason in the message sent to the client.
	detail bool
}{
	{ErrRoomNotFound, CodeRoomNotFound, false},
	{models.ErrNotFound, CodeRoomNotFound, false},
	{ErrNotParticipant, CodeNotParticipant, false},
	{ErrRoomNotReady, CodeRoomNotReady, false},
	{game.ErrIllegalMove, CodeIllegalMove, true},
	{resolver.ErrRoundClosed, CodeIllegalMove, true},
	{game.ErrVariantMismatch, CodeVariantMismatch, true},
	{game.ErrUnknownVariant, CodeVariantMismatch, true},
	{ErrSnapshotRejected, CodeSnapshotRejected, false},
	{ErrPersistence, CodePersistence, false},
	{ErrRoomBusy, CodeRoomBusy, false},
	{ErrClosed, CodeRoomBusy, false},
	{ErrRateLimited, CodeRateLimited, false},
	{ErrBadRequest, CodeBadRequest, true},
	{models.ErrMessageInvalid, CodeBadRequest, true},
}

// Code classifies err into the code reported to clients. Unclassified
// errors report bad_request.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return CodeBadRequest
}

// ErrorEvent builds the error event returned to the connection whose request
// failed. Internal details (database errors and the like) are not echoed.
func ErrorEvent(err error, requestID string) Event {
	ev := Event{Type: EventError, Code: CodeBadRequest, Message: ErrBadRequest.Error(), RequestID: requestID}
	for _, c := range codes {
		if errors.Is(err, c.target) {
			ev.Code = c.code
			ev.Message = c.target.Error()
			if c.detail {
				ev.Message = err.Error()
			}
			return ev
		}
	}
	return ev
}
