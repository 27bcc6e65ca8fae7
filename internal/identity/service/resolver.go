// Package service implements identity resolution for team registration: an
// email either maps to an eligible platform account or fails with a precise,
// user-correctable reason.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"tekfest/internal/identity/cache"
	identitymetrics "tekfest/internal/identity/metrics"
	"tekfest/internal/identity/models"
	"tekfest/internal/identity/store"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/sentinel"
)

// MembershipChecker reports whether an account already belongs to any team of
// the event, as leader or member. The registration store provides the
// implementation.
type MembershipChecker interface {
	IsMember(ctx context.Context, eventID id.EventID, accountID id.AccountID) (bool, error)
}

// Resolver is a pure lookup: it never mutates the team aggregate. The caller
// decides whether to persist the returned snapshot into a member slot.
type Resolver struct {
	accounts store.AccountStore
	members  MembershipChecker
	cache    cache.ProfileCache
	metrics  *identitymetrics.Metrics
	logger   *slog.Logger
}

type Option func(*Resolver)

// WithCache enables the read-through profile cache.
func WithCache(c cache.ProfileCache) Option {
	return func(r *Resolver) { r.cache = c }
}

func New(accounts store.AccountStore, members MembershipChecker, metrics *identitymetrics.Metrics, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		accounts: accounts,
		members:  members,
		metrics:  metrics,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve checks an email's eligibility to fill a non-leader member slot.
// Rules are evaluated in order: the account must exist, must not be the
// acting leader, and must not already belong to a team of this event.
func (r *Resolver) Resolve(ctx context.Context, email string, actingLeaderID id.AccountID, eventID id.EventID) (*models.ProfileSnapshot, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		r.metrics.Resolutions.WithLabelValues("invalid_email").Inc()
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is not syntactically valid")
	}

	snapshot, err := r.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			r.metrics.Resolutions.WithLabelValues("no_account").Inc()
			return nil, dErrors.New(dErrors.CodeNoAccount, "no account exists for this email")
		}
		r.metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	if snapshot.AccountID == actingLeaderID {
		r.metrics.Resolutions.WithLabelValues("self_reference").Inc()
		return nil, dErrors.New(dErrors.CodeSelfReference, "a leader cannot add themselves as a member")
	}

	member, err := r.members.IsMember(ctx, eventID, snapshot.AccountID)
	if err != nil {
		r.metrics.Resolutions.WithLabelValues("error").Inc()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check team membership")
	}
	if member {
		r.metrics.Resolutions.WithLabelValues("already_registered").Inc()
		return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "account already belongs to a team in this event")
	}

	r.metrics.Resolutions.WithLabelValues("ok").Inc()
	return snapshot, nil
}

func (r *Resolver) lookup(ctx context.Context, email string) (*models.ProfileSnapshot, error) {
	if r.cache != nil {
		if snapshot, err := r.cache.Find(ctx, email); err == nil {
			r.metrics.CacheHits.Inc()
			return snapshot, nil
		}
	}

	account, err := r.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	snapshot := account.Snapshot()

	if r.cache != nil {
		if err := r.cache.Save(ctx, email, &snapshot); err != nil {
			r.logger.WarnContext(ctx, "cache profile snapshot", "error", err)
		}
	}
	return &snapshot, nil
}
