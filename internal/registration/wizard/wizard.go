// Package wizard implements the client-side registration flow as an explicit
// state machine: seven ordered steps, per-field validation flags, and epoch
// tokens that discard stale asynchronous validation results.
//
// The wizard holds draft state only. Nothing here is authoritative: the
// server re-validates every slot at submission time.
package wizard

import (
	"sync"

	identitymodels "tekfest/internal/identity/models"
	"tekfest/internal/nik"
	regservice "tekfest/internal/registration/service"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Step is a position in the fixed forward order. Back navigation is always
// allowed and never clears entered data.
type Step int

const (
	StepTeamInfo Step = iota
	StepLeader
	StepMember1
	StepMember2
	StepTwibbon
	StepPayment
	StepSummary
)

func (s Step) String() string {
	switch s {
	case StepTeamInfo:
		return "team_info"
	case StepLeader:
		return "leader"
	case StepMember1:
		return "member_1"
	case StepMember2:
		return "member_2"
	case StepTwibbon:
		return "twibbon"
	case StepPayment:
		return "payment"
	case StepSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// FieldState is a field's validation flag.
//
// Unvalidated covers both a never-checked value and a value whose validation
// attempt failed transiently; either way a check is still owed. Stale marks a
// field whose previous Valid verdict was invalidated by an edit elsewhere
// (editing a member's email stales that member's NIK).
type FieldState int

const (
	FieldUnvalidated FieldState = iota
	FieldValid
	FieldInvalid
	FieldStale
)

// Field is one validatable input with its flag and last validation error.
type Field struct {
	Value string
	State FieldState
	Err   error
}

// Token identifies one validation attempt. Applying a result whose token no
// longer matches the field's current epoch is a no-op: the user has since
// edited the field and the verdict describes a value that is gone.
type Token struct {
	slot  int
	nik   bool
	epoch uint64
}

type slotState struct {
	email   Field
	nikF    Field
	profile *identitymodels.ProfileSnapshot

	emailEpoch uint64
	nikEpoch   uint64
}

// Wizard is one leader's in-progress registration draft. Safe for concurrent
// use: UI edits and async validation results may arrive on different
// goroutines.
type Wizard struct {
	mu sync.Mutex

	step     Step
	eventID  id.EventID
	teamName string
	// slots[0] is the leader; their email is resolved by login.
	slots            [3]slotState
	twibbonLinks     []string
	paymentInitiated [3]bool
}

// New starts a draft for the logged-in leader. The leader's email needs no
// resolution; their profile NIK is pre-filled and fast-pathed when it already
// has a valid shape.
func New(eventID id.EventID, leader identitymodels.ProfileSnapshot) *Wizard {
	w := &Wizard{eventID: eventID}
	leaderSlot := &w.slots[0]
	leaderSlot.profile = &leader
	leaderSlot.email = Field{Value: leader.Email, State: FieldValid}
	leaderSlot.nikF = Field{Value: leader.NIK}
	if nik.CheckFormat(leader.NIK) == nil {
		leaderSlot.nikF.State = FieldValid
	}
	return w
}

// Current returns the step the wizard is on.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SetTeamName records the team name.
func (w *Wizard) SetTeamName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teamName = name
}

// SetTwibbonLinks records the optional social-proof links.
func (w *Wizard) SetTwibbonLinks(links []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.twibbonLinks = append([]string(nil), links...)
}

// InitiatePayment records a member's acknowledgment that payment proof was
// sent. Slot 0 is the leader.
func (w *Wizard) InitiatePayment(slot int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if slot < 0 || slot > 2 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d does not exist", slot)
	}
	w.paymentInitiated[slot] = true
	return nil
}

// EditEmail records a new email value for a member slot and returns the token
// the eventual validation result must present. The slot's previously valid
// NIK becomes stale: its verdict belonged to the old identity.
func (w *Wizard) EditEmail(slot int, value string) (Token, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if slot != 1 && slot != 2 {
		return Token{}, dErrors.Newf(dErrors.CodeInvalidInput, "email is editable only on member slots, not %d", slot)
	}

	st := &w.slots[slot]
	st.emailEpoch++
	st.email = Field{Value: value}
	st.profile = nil
	if st.nikF.State == FieldValid {
		st.nikF.State = FieldStale
	}
	// In-flight NIK results also describe the old identity.
	st.nikEpoch++
	return Token{slot: slot, epoch: st.emailEpoch}, nil
}

// EditNik records a new NIK value for a slot and returns its token.
func (w *Wizard) EditNik(slot int, value string) (Token, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if slot < 0 || slot > 2 {
		return Token{}, dErrors.Newf(dErrors.CodeInvalidInput, "slot %d does not exist", slot)
	}

	st := &w.slots[slot]
	st.nikEpoch++
	st.nikF = Field{Value: value}
	return Token{slot: slot, nik: true, epoch: st.nikEpoch}, nil
}

// ApplyEmailResult folds an asynchronous resolution result into the draft.
// It reports whether the result was applied; a false return means the field
// was edited after the attempt started and the verdict was discarded.
//
// On success the slot is pre-populated from the profile: the NIK field takes
// the profile value, and when that value already has a valid 16-digit shape
// it is marked valid without a further round-trip.
func (w *Wizard) ApplyEmailResult(token Token, profile *identitymodels.ProfileSnapshot, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := &w.slots[token.slot]
	if token.nik || token.epoch != st.emailEpoch {
		return false
	}

	if err != nil {
		st.email.Err = err
		if dErrors.Retryable(err) {
			// A transport failure is not a verdict on the value.
			st.email.State = FieldUnvalidated
		} else {
			st.email.State = FieldInvalid
		}
		return true
	}

	st.email.State = FieldValid
	st.email.Err = nil
	st.profile = profile

	st.nikEpoch++
	st.nikF = Field{Value: profile.NIK}
	if profile.NIK != "" && nik.CheckFormat(profile.NIK) == nil {
		st.nikF.State = FieldValid
	}
	return true
}

// ApplyNikResult folds an asynchronous NIK validation result into the draft,
// discarding it when the token's epoch is stale.
func (w *Wizard) ApplyNikResult(token Token, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := &w.slots[token.slot]
	if !token.nik || token.epoch != st.nikEpoch {
		return false
	}

	if err != nil {
		st.nikF.Err = err
		if dErrors.Retryable(err) {
			st.nikF.State = FieldUnvalidated
		} else {
			st.nikF.State = FieldInvalid
		}
		return true
	}

	st.nikF.State = FieldValid
	st.nikF.Err = nil
	return true
}

// EmailField returns the slot's email field snapshot.
func (w *Wizard) EmailField(slot int) Field {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slots[slot].email
}

// NikField returns the slot's NIK field snapshot.
func (w *Wizard) NikField(slot int) Field {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slots[slot].nikF
}

// Profile returns the resolved profile for a slot, nil when unresolved.
func (w *Wizard) Profile(slot int) *identitymodels.ProfileSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slots[slot].profile
}

// Next advances to the following step if the current step's gate passes.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.gate(w.step); err != nil {
		return err
	}
	if w.step == StepSummary {
		return dErrors.New(dErrors.CodeInvalidInput, "already at the final step")
	}
	w.step++
	return nil
}

// Back returns to the previous step. Always allowed; entered data and
// validation flags survive.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepTeamInfo {
		w.step--
	}
}

func (w *Wizard) gate(step Step) error {
	switch step {
	case StepTeamInfo:
		if w.teamName == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "team name is required")
		}
	case StepLeader:
		if w.slots[0].nikF.State != FieldValid {
			return dErrors.New(dErrors.CodeInvalidInput, "leader NIK must be validated")
		}
	case StepMember1:
		return w.memberGate(1)
	case StepMember2:
		return w.memberGate(2)
	case StepTwibbon:
		// Optional step; never blocks.
	case StepPayment:
		for slot, ok := range w.paymentInitiated {
			if !ok {
				return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d has not initiated payment", slot)
			}
		}
	}
	return nil
}

func (w *Wizard) memberGate(slot int) error {
	st := &w.slots[slot]
	if st.email.State != FieldValid {
		return dErrors.Newf(dErrors.CodeInvalidInput, "member %d email must be validated", slot)
	}
	if st.nikF.State != FieldValid {
		return dErrors.Newf(dErrors.CodeInvalidInput, "member %d NIK must be validated", slot)
	}
	return nil
}

// SubmitInput assembles the final submission payload. Every gate must pass;
// the server still re-validates everything.
func (w *Wizard) SubmitInput() (regservice.SubmitTeamInput, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for step := StepTeamInfo; step <= StepPayment; step++ {
		if err := w.gate(step); err != nil {
			return regservice.SubmitTeamInput{}, err
		}
	}

	leader := w.slots[0].profile
	return regservice.SubmitTeamInput{
		EventID:         w.eventID,
		Name:            w.teamName,
		LeaderAccountID: leader.AccountID,
		Leader: regservice.MemberInput{
			NIK:              w.slots[0].nikF.Value,
			PaymentInitiated: w.paymentInitiated[0],
		},
		Members: [2]regservice.MemberInput{
			{
				Email:            w.slots[1].email.Value,
				NIK:              w.slots[1].nikF.Value,
				PaymentInitiated: w.paymentInitiated[1],
			},
			{
				Email:            w.slots[2].email.Value,
				NIK:              w.slots[2].nikF.Value,
				PaymentInitiated: w.paymentInitiated[2],
			},
		},
		TwibbonLinks: append([]string(nil), w.twibbonLinks...),
	}, nil
}

// OtherNiks lists the NIK values currently entered on the other slots, for
// the team-level duplicate check.
func (w *Wizard) OtherNiks(slot int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, 2)
	for i := range w.slots {
		if i != slot && w.slots[i].nikF.Value != "" {
			out = append(out, w.slots[i].nikF.Value)
		}
	}
	return out
}
