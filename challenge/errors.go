package challenge

import (
	"errors"
)

// The user-facing error taxonomy. Handlers map these onto short
// non-technical replies; anything else is logged and surfaced as a
// generic try-again-later message.
var (
	// ErrUnauthorized: the acting member holds none of the moderator roles.
	ErrUnauthorized = errors.New("you do not have permission to use this command")
	// ErrConflict: a challenge is already accepting submissions or voting.
	ErrConflict = errors.New("a challenge is already active")
	// ErrInvalidState: the operation is illegal in the current lifecycle state.
	ErrInvalidState = errors.New("the challenge is not in the right stage for that")
	// ErrNotFound: the referenced challenge or submission does not exist.
	ErrNotFound = errors.New("challenge or submission not found")
	// ErrEmpty: there are no submissions to act on.
	ErrEmpty = errors.New("there are no submissions to start voting for")
	// ErrNoActiveChallenge: no challenge is currently accepting submissions.
	ErrNoActiveChallenge = errors.New("no active challenge is currently accepting submissions")
	// ErrFinalized: the submission is frozen and can no longer change.
	ErrFinalized = errors.New("your submission has already been finalized and cannot be changed")
	// ErrNoUpdates: an update call carried no fields.
	ErrNoUpdates = errors.New("no updates provided")
	// ErrInvalidImage: the submission content is not an accepted image.
	ErrInvalidImage = errors.New("you must attach a valid image file (PNG, JPEG, JPG, or GIF)")
)

// IsUserFacing reports whether err belongs to the taxonomy above and
// may be shown to the member verbatim.
func IsUserFacing(err error) bool {
	for _, known := range []error{
		ErrUnauthorized, ErrConflict, ErrInvalidState,
		ErrNotFound, ErrEmpty, ErrNoActiveChallenge, ErrFinalized,
		ErrNoUpdates, ErrInvalidImage,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
