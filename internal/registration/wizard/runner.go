package wizard

import (
	"context"
	"errors"
	"time"

	identitymodels "tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Validator performs the server round-trips the wizard needs. The HTTP
// Client implements it; tests substitute fakes.
type Validator interface {
	ValidateEmail(ctx context.Context, eventID id.EventID, leaderID id.AccountID, email string) (*identitymodels.ProfileSnapshot, error)
	ValidateNik(ctx context.Context, eventID id.EventID, memberEmail, nikValue string, otherNiks []string) error
}

// Runner drives asynchronous field validation for a wizard: it snapshots the
// field's value and token under lock, performs the round-trip with a bounded
// timeout, and folds the result back in. Results for values edited in the
// meantime are discarded by the epoch check.
type Runner struct {
	wizard    *Wizard
	validator Validator
	leaderID  id.AccountID
	timeout   time.Duration
}

func NewRunner(w *Wizard, validator Validator, leaderID id.AccountID, timeout time.Duration) *Runner {
	return &Runner{wizard: w, validator: validator, leaderID: leaderID, timeout: timeout}
}

// ValidateEmail runs one email resolution attempt for a member slot. The
// caller typically invokes it in a goroutine per keystroke-commit; ordering
// does not matter because stale results are discarded.
func (r *Runner) ValidateEmail(ctx context.Context, token Token, email string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.validator.ValidateEmail(ctx, r.wizard.eventID, r.leaderID, email)
	return r.wizard.ApplyEmailResult(token, profile, asFieldError(err))
}

// ValidateNik runs one NIK validation attempt for a slot.
func (r *Runner) ValidateNik(ctx context.Context, token Token, slot int, nikValue, memberEmail string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.validator.ValidateNik(ctx, r.wizard.eventID, memberEmail, nikValue, r.wizard.OtherNiks(slot))
	return r.wizard.ApplyNikResult(token, asFieldError(err))
}

// asFieldError normalizes transport-level failures to the retryable network
// code so they are never mistaken for a validation verdict.
func asFieldError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "validation request timed out")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeNetwork, "validation request failed")
}
