// Package forms implements the create dialogs: a draft seeded from
// defaults, required-field validation, a single POST per submit and the
// success/failure transitions every dialog shares.
package forms

import (
	"context"
	"errors"
	"sync"

	"projecthub/internal/core"
)

// Draft is the editable payload of one dialog.
type Draft interface {
	Action() core.Action
	Validate() error
}

// Submitter sends a create action to the backend.
type Submitter interface {
	Create(ctx context.Context, action core.Action, payload any) (core.Created, error)
}

// ErrSubmitting is returned when Submit is called while a previous submit of
// the same form is still in flight.
var ErrSubmitting = errors.New("form submission already in progress")

// Form holds the state of one create dialog.
type Form[D Draft] struct {
	mu         sync.Mutex
	draft      D
	open       bool
	submitting bool
	err        error

	defaults  func() D
	submitter Submitter
	onSuccess func(core.Created)
}

// New returns a closed form whose draft is defaults(). onSuccess may be nil.
func New[D Draft](defaults func() D, submitter Submitter, onSuccess func(core.Created)) *Form[D] {
	return &Form[D]{
		draft:     defaults(),
		defaults:  defaults,
		submitter: submitter,
		onSuccess: onSuccess,
	}
}

// Open shows the dialog. The draft is left as it was.
func (f *Form[D]) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
}

// Close hides the dialog without touching the draft.
func (f *Form[D]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

func (f *Form[D]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Submitting reports whether a submit is in flight.
func (f *Form[D]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Draft returns a copy of the current draft.
func (f *Form[D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// SetDraft replaces the draft, typically with values bound from a request.
func (f *Form[D]) SetDraft(d D) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = d
}

// Update edits the draft in place.
func (f *Form[D]) Update(edit func(*D)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit(&f.draft)
}

// Reset restores the defaults and clears the last error.
func (f *Form[D]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = f.defaults()
	f.err = nil
}

// Err is the failure of the last submit, nil after a success or Reset.
func (f *Form[D]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit validates the draft and posts it once. On success the callback
// runs, then the dialog closes and the draft goes back to defaults. On any
// failure the dialog and draft are left untouched and the callback is not
// called; a validation failure sends nothing.
func (f *Form[D]) Submit(ctx context.Context) (core.Created, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return core.Created{}, ErrSubmitting
	}
	draft := f.draft
	if err := draft.Validate(); err != nil {
		f.err = err
		f.mu.Unlock()
		return core.Created{}, err
	}
	f.submitting = true
	f.mu.Unlock()

	created, err := f.submitter.Create(ctx, draft.Action(), draft)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.err = err
		f.mu.Unlock()
		return core.Created{}, err
	}
	f.mu.Unlock()

	if f.onSuccess != nil {
		f.onSuccess(created)
	}

	f.mu.Lock()
	f.open = false
	f.draft = f.defaults()
	f.err = nil
	f.mu.Unlock()
	return created, nil
}
