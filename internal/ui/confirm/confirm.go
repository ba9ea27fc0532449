package confirm

import "sync"

// Kind classifies a dialog request. Confirm is the only kind with a real
// yes/no decision; the notification kinds present a single dismiss.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindConfirm Kind = "confirm"
)

// Request is one ephemeral dialog payload. OnConfirm, when set, runs exactly
// once if and only if the request is confirmed. Extra carries optional
// supplementary content rendered under the message.
type Request struct {
	Message   string
	Kind      Kind
	OnConfirm func()
	Extra     string
}

// Dialog is the single shared confirmation surface. It holds at most one
// open request; opening while open replaces the current request rather than
// queuing behind it. There is exactly one Dialog per process, constructed at
// the top of the application and threaded to whatever needs it.
type Dialog struct {
	mu      sync.Mutex
	current *Request
}

func NewDialog() *Dialog {
	return &Dialog{}
}

// Open transitions to Open(request), replacing any request already showing.
func (d *Dialog) Open(req Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if req.Kind == "" {
		req.Kind = KindError
	}
	d.current = &req
}

// Current returns the open request, if any.
func (d *Dialog) Current() (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return Request{}, false
	}
	return *d.current, true
}

// IsOpen reports whether a request is showing.
func (d *Dialog) IsOpen() bool {
	_, open := d.Current()
	return open
}

// Confirm closes the dialog, invoking the request's OnConfirm first. Closed
// dialogs ignore it.
func (d *Dialog) Confirm() {
	d.mu.Lock()
	req := d.current
	d.current = nil
	d.mu.Unlock()

	// Invoked outside the lock so OnConfirm may open a follow-up request.
	if req != nil && req.OnConfirm != nil {
		req.OnConfirm()
	}
}

// Cancel closes the dialog without invoking OnConfirm. Closed dialogs
// ignore it.
func (d *Dialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
}
