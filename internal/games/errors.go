// internal/games/errors.go

package games

import "github.com/imadgeboyega/kiekky-couples/internal/common/apperr"

var (
	ErrActiveGameExists      = apperr.New(apperr.KindConflict, "active_game_exists", "You already have an active game of this type with this partner")
	ErrAlreadySubmitted      = apperr.New(apperr.KindConflict, "already_submitted", "You have already submitted")
	ErrRestartAlreadyPending = apperr.New(apperr.KindConflict, "restart_already_pending", "A restart has already been requested")

	ErrInvitationExpired = apperr.New(apperr.KindPreconditionFailed, "invitation_expired", "This invitation has expired")
	ErrNotPending        = apperr.New(apperr.KindPreconditionFailed, "not_pending", "This invitation is no longer pending")
	ErrNotInWritingPhase = apperr.New(apperr.KindPreconditionFailed, "not_in_writing_phase", "The game is not accepting content right now")
	ErrNotInAnswerPhase  = apperr.New(apperr.KindPreconditionFailed, "not_in_answering_phase", "The game is not accepting answers right now")
	ErrNotCompleted      = apperr.New(apperr.KindPreconditionFailed, "not_completed", "The game is not completed yet")
	ErrNoRestartPending  = apperr.New(apperr.KindPreconditionFailed, "no_restart_pending", "No restart has been requested")
	ErrInvalidTransition = apperr.New(apperr.KindPreconditionFailed, "invalid_state", "This action is not allowed in the current state")
	ErrMatchNotMutual    = apperr.New(apperr.KindPreconditionFailed, "match_not_mutual", "You can only play with a mutual match")

	ErrNotInvitee        = apperr.New(apperr.KindForbidden, "not_invitee", "Only the invited player can respond")
	ErrOwnRestartRequest = apperr.New(apperr.KindForbidden, "own_restart_request", "Your partner has to accept the restart")
	ErrUnknownGameType   = apperr.Invalid("unknown_game_type", "Unknown game type")
	ErrCannotInviteSelf  = apperr.Invalid("invalid_partner", "You cannot invite yourself")
)
