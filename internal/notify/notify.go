// Package notify carries the one transient signal every user action produces.
package notify

import (
	"sync"
	"time"
)

// Kind categorizes a notice
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
)

// Default display durations
const (
	SuccessDuration = 2 * time.Second
	ErrorDuration   = 3 * time.Second
	WarningDuration = 3 * time.Second
	DenialDuration  = 4 * time.Second
)

// Notice is a short transient message shown to the user
type Notice struct {
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier presents notices
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier
type Func func(Notice)

// Notify calls f(n)
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice
var Discard Notifier = Func(func(Notice) {})

// Successf builds a success notice
func Successf(title, msg string) Notice {
	return Notice{Kind: Success, Title: title, Message: msg, Duration: SuccessDuration}
}

// Errorf builds an error notice
func Errorf(title, msg string) Notice {
	return Notice{Kind: Error, Title: title, Message: msg, Duration: ErrorDuration}
}

// Warningf builds a warning notice
func Warningf(title, msg string) Notice {
	return Notice{Kind: Warning, Title: title, Message: msg, Duration: WarningDuration}
}

// Recorder keeps every notice it receives
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Reset drops the recorded notices
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
