//go:build integration

package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventmodels "tekfest/internal/event/models"
	eventstore "tekfest/internal/event/store"
	identitymodels "tekfest/internal/identity/models"
	identitystore "tekfest/internal/identity/store"
	judgingmodels "tekfest/internal/judging/models"
	judgingstore "tekfest/internal/judging/store"
	registrationmodels "tekfest/internal/registration/models"
	registrationstore "tekfest/internal/registration/store"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/testutil/containers"
)

// seedEvent inserts an event row the other aggregates can reference.
func seedEvent(t *testing.T, ctx context.Context, events eventstore.EventStore) id.EventID {
	t.Helper()
	event := &eventmodels.Event{
		ID:            id.NewEventID(),
		Name:          "Hackfest " + id.NewEventID().String(),
		Slug:          "hackfest-" + id.NewEventID().String(),
		RubricVersion: "hackfest-v1",
		StartsAt:      time.Now(),
		EndsAt:        time.Now().Add(48 * time.Hour),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, events.CreateIfNameAvailable(ctx, event))
	return event.ID
}

func TestPostgresStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	t.Cleanup(func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(context.Background())
	})

	ctx := context.Background()
	events := eventstore.NewPostgresEventStore(pg.DB)
	accounts := identitystore.NewPostgresAccountStore(pg.DB)
	teams := registrationstore.NewPostgresTeamStore(pg.DB)
	submissions := judgingstore.NewPostgresSubmissionStore(pg.DB)
	winners := judgingstore.NewPostgresWinnerStore(pg.DB)

	eventID := seedEvent(t, ctx, events)

	seedAccount := func(email, nik string) id.AccountID {
		account := &identitymodels.Account{
			ID:       id.NewAccountID(),
			Email:    email,
			Name:     "Account " + email,
			NIK:      nik,
			Category: id.CategoryUniversity,
			Domicile: "Bandung",
		}
		require.NoError(t, accounts.Create(ctx, account))
		return account.ID
	}

	newTeam := func(name string, leaderID id.AccountID, memberIDs [2]id.AccountID, niks [3]string) *registrationmodels.Team {
		team := &registrationmodels.Team{
			ID:              id.NewTeamID(),
			EventID:         eventID,
			Name:            name,
			Code:            registrationmodels.NewTeamCode(),
			LeaderAccountID: leaderID,
			CreatedAt:       time.Now(),
		}
		team.Leader = registrationmodels.Member{
			Slot: 0, AccountID: leaderID, Name: "Leader", Email: name + "-leader@example.com",
			NIK: niks[0], Category: id.CategoryUniversity, Domicile: "Bandung",
			PaymentStatus: id.PaymentPending, PaymentInitiated: true,
		}
		for i := 0; i < 2; i++ {
			team.Members[i] = registrationmodels.Member{
				Slot: i + 1, AccountID: memberIDs[i], Name: "Member", Email: name + "-member@example.com",
				NIK: niks[i+1], Category: id.CategoryUniversity, Domicile: "Bandung",
				PaymentStatus: id.PaymentPending, PaymentInitiated: true,
			}
		}
		return team
	}

	var teamID id.TeamID

	t.Run("team submit round-trips and is idempotent per leader", func(t *testing.T) {
		leaderID := seedAccount("alpha-leader@example.com", "3201012505990001")
		memberIDs := [2]id.AccountID{
			seedAccount("alpha-one@example.com", "3201012505990002"),
			seedAccount("alpha-two@example.com", "3201012505990003"),
		}
		team := newTeam("alpha", leaderID, memberIDs,
			[3]string{"3201012505990001", "3201012505990002", "3201012505990003"})

		stored, created, err := teams.Submit(ctx, team)
		require.NoError(t, err)
		assert.True(t, created)
		teamID = stored.ID

		loaded, err := teams.FindByID(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, id.TeamSubmitted, loaded.Status)
		assert.Equal(t, "3201012505990002", loaded.Members[0].NIK)

		again, created, err := teams.Submit(ctx, team)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, stored.ID, again.ID)
	})

	t.Run("nik uniqueness is enforced event-wide", func(t *testing.T) {
		inUse, err := teams.NikInUse(ctx, eventID, "3201012505990002", id.TeamID{})
		require.NoError(t, err)
		assert.True(t, inUse)

		inUse, err = teams.NikInUse(ctx, eventID, "3201012505990002", teamID)
		require.NoError(t, err)
		assert.False(t, inUse, "owning team is excluded")

		leaderID := seedAccount("bravo-leader@example.com", "3201012505990004")
		memberIDs := [2]id.AccountID{
			seedAccount("bravo-one@example.com", "3201012505990005"),
			seedAccount("bravo-two@example.com", "3201012505990006"),
		}
		dup := newTeam("bravo", leaderID, memberIDs,
			[3]string{"3201012505990004", "3201012505990002", "3201012505990006"})
		_, _, err = teams.Submit(ctx, dup)
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyExists))
	})

	t.Run("payment update touches exactly one slot", func(t *testing.T) {
		require.NoError(t, teams.UpdateMemberPayment(ctx, teamID, 1, id.PaymentVerified))

		loaded, err := teams.FindByID(ctx, teamID)
		require.NoError(t, err)
		assert.Equal(t, id.PaymentVerified, loaded.Members[0].PaymentStatus)
		assert.Equal(t, id.PaymentPending, loaded.Leader.PaymentStatus)

		err = teams.UpdateMemberPayment(ctx, id.NewTeamID(), 1, id.PaymentVerified)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("winner compare-and-swap admits exactly one concurrent assign", func(t *testing.T) {
		loaded, err := teams.FindByID(ctx, teamID)
		require.NoError(t, err)

		makeSubmission := func(title string) id.SubmissionID {
			submission := &judgingmodels.Submission{
				ID:        id.NewSubmissionID(),
				EventID:   eventID,
				TeamID:    loaded.ID,
				TeamName:  loaded.Name,
				Title:     title,
				CreatedAt: time.Now(),
			}
			require.NoError(t, submissions.Create(ctx, submission))
			return submission.ID
		}
		// One team has one submission; reuse it and a second team's for the race.
		first := makeSubmission("alpha project")

		leaderID := seedAccount("charlie-leader@example.com", "3201012505990007")
		memberIDs := [2]id.AccountID{
			seedAccount("charlie-one@example.com", "3201012505990008"),
			seedAccount("charlie-two@example.com", "3201012505990009"),
		}
		rivalTeam := newTeam("charlie", leaderID, memberIDs,
			[3]string{"3201012505990007", "3201012505990008", "3201012505990009"})
		rivalStored, _, err := teams.Submit(ctx, rivalTeam)
		require.NoError(t, err)
		rival := &judgingmodels.Submission{
			ID:        id.NewSubmissionID(),
			EventID:   eventID,
			TeamID:    rivalStored.ID,
			TeamName:  rivalStored.Name,
			Title:     "charlie project",
			CreatedAt: time.Now(),
		}
		require.NoError(t, submissions.Create(ctx, rival))

		candidates := []id.SubmissionID{first, rival.ID}
		var wg sync.WaitGroup
		results := make([]error, len(candidates))
		for i, candidate := range candidates {
			wg.Add(1)
			go func(i int, candidate id.SubmissionID) {
				defer wg.Done()
				results[i] = winners.CompareAndSwap(ctx, nil, judgingmodels.WinnerAssignment{
					EventID:      eventID,
					Category:     id.WinnerOverall,
					SubmissionID: candidate,
					AssignedBy:   id.NewAccountID(),
					AssignedAt:   time.Now(),
				})
			}(i, candidate)
		}
		wg.Wait()

		var conflicts, successes int
		for _, err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, sentinel.ErrConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)

		live, err := winners.Find(ctx, eventID, id.WinnerOverall)
		require.NoError(t, err)

		// Superseding with the observed holder succeeds.
		holder := live.SubmissionID
		other := first
		if holder == first {
			other = rival.ID
		}
		err = winners.CompareAndSwap(ctx, &holder, judgingmodels.WinnerAssignment{
			EventID:      eventID,
			Category:     id.WinnerOverall,
			SubmissionID: other,
			AssignedBy:   id.NewAccountID(),
			AssignedAt:   time.Now(),
		})
		require.NoError(t, err)

		// Clearing with a stale holder is a no-op.
		removed, err := winners.Clear(ctx, eventID, id.WinnerOverall, holder)
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = winners.Clear(ctx, eventID, id.WinnerOverall, other)
		require.NoError(t, err)
		assert.True(t, removed)
	})
}
