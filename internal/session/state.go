package session

import (
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/domain"
)

// Status labels shown while a job is active.
const (
	labelQueued     = "Queued..."
	labelInProgress = "In progress..."
)

const alertMessage = "Image generation failed."

// Alert is a modal error surfaced to the user. The presentation layer offers
// retry and dismiss for it.
type Alert struct {
	Message string `json:"message"`
}

// State is the UI state owned exclusively by the machine. Busy is true while
// a job is active; StatusLabel is non-empty exactly then. Images is ordered
// newest first. PendingPrompt holds the last submitted prompt so a failed
// generation can be retried.
type State struct {
	InputText     string                  `json:"input_text"`
	Busy          bool                    `json:"busy"`
	StatusLabel   string                  `json:"status_label,omitempty"`
	Images        []domain.GeneratedImage `json:"images"`
	PendingPrompt string                  `json:"pending_prompt,omitempty"`
	Alert         *Alert                  `json:"alert,omitempty"`
}

func (s State) clone() State {
	out := s
	if s.Images != nil {
		out.Images = make([]domain.GeneratedImage, len(s.Images))
		copy(out.Images, s.Images)
	}
	if s.Alert != nil {
		alert := *s.Alert
		out.Alert = &alert
	}
	return out
}

// Action is a user intent or an internal job-stream callback.
type Action interface{ isAction() }

// TextChanged updates the input field.
type TextChanged struct{ Text string }

// Submit submits the current input. Submitting empty input cancels the
// active job, if any.
type Submit struct{}

// AlertRetry dismisses the alert and restores the failed prompt to the input.
type AlertRetry struct{}

// AlertDismiss dismisses the alert.
type AlertDismiss struct{}

// jobUpdate and jobClosed re-enter the action queue from the subscription
// goroutine, tagged with the submission id so stale streams are dropped.
type jobUpdate struct {
	jobID  string
	update domain.JobUpdate
}

type jobClosed struct {
	jobID string
	err   error
}

func (TextChanged) isAction()  {}
func (Submit) isAction()       {}
func (AlertRetry) isAction()   {}
func (AlertDismiss) isAction() {}
func (jobUpdate) isAction()    {}
func (jobClosed) isAction()    {}

// command describes the side effect a transition asks the machine to run.
type command struct {
	startPrompt string
	cancel      bool
}

// reduce maps (state, action) to (state, command). activeID is the machine's
// current submission id, "" when idle. Every transition is total: an action
// that makes no sense in the current state is a no-op, never a failure.
func reduce(s State, activeID string, a Action) (State, command) {
	switch act := a.(type) {
	case TextChanged:
		s.InputText = act.Text
		return s, command{}

	case Submit:
		if s.InputText == "" {
			// Clearing the input while busy is the cancel affordance.
			s.Busy = false
			s.StatusLabel = ""
			return s, command{cancel: true}
		}
		if s.Busy {
			return s, command{}
		}
		prompt := s.InputText
		s.PendingPrompt = prompt
		s.InputText = ""
		s.Busy = true
		s.StatusLabel = labelQueued
		return s, command{startPrompt: prompt}

	case AlertRetry:
		if s.Alert == nil {
			return s, command{}
		}
		if s.PendingPrompt != "" {
			s.InputText = s.PendingPrompt
		}
		s.Alert = nil
		return s, command{}

	case AlertDismiss:
		s.Alert = nil
		return s, command{}

	case jobUpdate:
		if !s.Busy || act.jobID != activeID {
			return s, command{}
		}
		switch act.update.Status {
		case domain.JobStatusQueued:
			s.StatusLabel = labelQueued
		case domain.JobStatusInProgress:
			s.StatusLabel = labelInProgress
		case domain.JobStatusCompleted:
			s.Busy = false
			s.StatusLabel = ""
			s.PendingPrompt = ""
			if act.update.Result != nil && len(act.update.Result.Images) > 0 {
				s.Images = append([]domain.GeneratedImage{act.update.Result.Images[0]}, s.Images...)
			}
		}
		return s, command{}

	case jobClosed:
		if act.jobID != activeID {
			return s, command{}
		}
		s.Busy = false
		s.StatusLabel = ""
		if act.err != nil && !isCancellation(act.err) {
			// PendingPrompt is preserved so retry can repopulate the input.
			s.Alert = &Alert{Message: alertMessage}
		}
		return s, command{}
	}
	return s, command{}
}
