package notify

import "sync"

// Entry is one recorded outcome
type Entry struct {
	Success bool
	Message string
}

// Recorder keeps every outcome in memory, in order
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Success: true, Message: message})
}

func (r *Recorder) Failure(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Success: false, Message: message})
}

// Entries returns a copy of the recorded outcomes
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Failures returns the recorded failure messages
func (r *Recorder) Failures() []string {
	return r.filter(false)
}

// Successes returns the recorded success messages
func (r *Recorder) Successes() []string {
	return r.filter(true)
}

func (r *Recorder) filter(success bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Success == success {
			out = append(out, e.Message)
		}
	}
	return out
}
