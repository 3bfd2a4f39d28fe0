package allowlist

import "sync/atomic"

// Holder keeps the current allow-list snapshot and allows to swap it
// atomically, so concurrent handlers always read a complete list while a
// reload is in progress.
type Holder struct {
	path    string
	current atomic.Pointer[List]
}

// NewHolder method loads the allow-list from the given path and wraps it
// in a Holder. It returns an error if the initial load fails.
func NewHolder(path string) (*Holder, error) {
	list, err := Load(path)
	if err != nil {
		return nil, err
	}
	h := &Holder{path: path}
	h.current.Store(list)
	return h, nil
}

// Current method returns the current allow-list snapshot.
func (h *Holder) Current() *List {
	return h.current.Load()
}

// Reload method re-reads the allow-list file and swaps the snapshot. If
// the reload fails, the previous snapshot is kept and the error is
// returned to the caller.
func (h *Holder) Reload() error {
	list, err := Load(h.path)
	if err != nil {
		return err
	}
	h.current.Store(list)
	return nil
}
