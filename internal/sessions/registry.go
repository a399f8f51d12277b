// Package sessions keeps the independent rating sessions served over HTTP.
package sessions

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/himanishpuri/SimilarityRater/pkg/rater/audio"
)

var ErrNotFound = errors.New("session not found")

// Entry is one rater's session plus the audio uploaded for it. All access
// goes through Do so a request finishes before the next one starts.
type Entry struct {
	id      string
	created time.Time

	mu      sync.Mutex
	session *rater.Session
	files   map[string][]byte
	infos   map[string]audio.Info
}

func (e *Entry) ID() string {
	return e.id
}

func (e *Entry) CreatedAt() time.Time {
	return e.created
}

// Do runs fn with the entry locked.
func (e *Entry) Do(fn func(s *rater.Session, items *Items) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session, &Items{e: e})
}

// Items is the uploaded audio of an entry. It is only valid inside Do.
type Items struct {
	e *Entry
}

// Names returns the uploaded item names in sorted order.
func (it *Items) Names() []string {
	return slices.Sorted(maps.Keys(it.e.files))
}

// SameNames reports whether names is exactly the uploaded name set.
func (it *Items) SameNames(names []string) bool {
	if len(names) != len(it.e.files) {
		return false
	}
	for _, n := range names {
		if _, ok := it.e.files[n]; !ok {
			return false
		}
	}
	return true
}

// Replace swaps the uploaded audio for files and probes each one. Probe
// failures are kept as size-only info; they never reject an item.
func (it *Items) Replace(files map[string][]byte) {
	it.e.files = make(map[string][]byte, len(files))
	it.e.infos = make(map[string]audio.Info, len(files))
	for name, data := range files {
		it.e.files[name] = data
		info, _ := audio.ProbeBytes(name, data)
		it.e.infos[name] = *info
	}
}

func (it *Items) Clear() {
	it.e.files = nil
	it.e.infos = nil
}

func (it *Items) Data(name string) ([]byte, bool) {
	data, ok := it.e.files[name]
	return data, ok
}

// Infos returns probe results ordered by name.
func (it *Items) Infos() []audio.Info {
	out := make([]audio.Info, 0, len(it.e.infos))
	for _, name := range it.Names() {
		out = append(out, it.e.infos[name])
	}
	return out
}

// Registry maps session ids to entries. Sessions share nothing.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	newSession func(id string) *rater.Session
}

// New returns a registry that builds sessions with newSession.
func New(newSession func(id string) *rater.Session) *Registry {
	return &Registry{
		entries:    make(map[string]*Entry),
		newSession: newSession,
	}
}

func (r *Registry) Create() *Entry {
	id := uuid.NewString()
	e := &Entry{
		id:      id,
		created: time.Now(),
		session: r.newSession(id),
	}

	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	return e
}

func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
