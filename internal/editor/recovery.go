package editor

import (
	"errors"

	"github.com/flowforge/flowforge/internal/campaign"
)

// RecoveryState is the state of the draft recovery flow entered when a user
// opens the create-campaign editor.
type RecoveryState string

const (
	// StateNoDraft means recovery is not applicable: a campaign is already
	// loaded in the session.
	StateNoDraft RecoveryState = "no_draft"
	// StatePrompting means saved drafts exist and the user must choose
	// between resuming the latest draft and starting fresh.
	StatePrompting RecoveryState = "prompting"
	// StateResumedFromDraft means the latest draft was loaded as the
	// current campaign.
	StateResumedFromDraft RecoveryState = "resumed_from_draft"
	// StateStartedFresh means a blank campaign was installed.
	StateStartedFresh RecoveryState = "started_fresh"
)

// ErrNoDraft is returned by Resume when no draft exists.
var ErrNoDraft = errors.New("no draft campaign to resume")

// Recovery drives the draft recovery flow over a session.
type Recovery struct {
	session *Session
	userID  string
	state   RecoveryState
}

// NewRecovery creates a recovery flow for the session. New campaigns created
// by the flow are owned by userID.
func NewRecovery(s *Session, userID string) *Recovery {
	return &Recovery{session: s, userID: userID, state: StateNoDraft}
}

// State returns the flow's current state.
func (r *Recovery) State() RecoveryState {
	return r.state
}

// Begin evaluates the entry conditions. With a campaign already loaded the
// flow stays in StateNoDraft. With drafts waiting and nothing loaded it
// moves to StatePrompting and awaits Resume or StartFresh. Otherwise a
// blank campaign is installed and the flow resolves to StateStartedFresh.
func (r *Recovery) Begin() RecoveryState {
	if r.session.Current() != nil {
		r.state = StateNoDraft
		return r.state
	}
	if len(r.session.Drafts()) > 0 {
		r.state = StatePrompting
		return r.state
	}
	r.session.NewCampaign(r.userID)
	r.state = StateStartedFresh
	return r.state
}

// Resume loads the most recently saved draft as the current campaign.
func (r *Recovery) Resume() (*campaign.Campaign, error) {
	drafts := r.session.Drafts()
	if len(drafts) == 0 {
		return nil, ErrNoDraft
	}
	latest := drafts[len(drafts)-1]
	r.session.SetCurrentCampaign(&latest)
	r.state = StateResumedFromDraft
	return latest.Clone(), nil
}

// StartFresh discards the prompt and installs a blank campaign.
func (r *Recovery) StartFresh() *campaign.Campaign {
	c := r.session.NewCampaign(r.userID)
	r.state = StateStartedFresh
	return c
}
