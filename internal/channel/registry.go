package channel

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// DefaultSeeds are the channels every process starts with.
var DefaultSeeds = []string{"general", "random"}

// Registry is the single owner of all channel records. Every operation is
// atomic with respect to the others.
type Registry struct {
	mu      sync.RWMutex
	names   *nameValidator
	nextID  ID
	byID    map[ID]*Channel
	order   []ID
	byName  map[string]ID
	dedupes bool
}

// NewRegistry creates a registry using the given name policy and creates
// each seed channel in order. Seeds that fail validation are skipped and
// reported in the returned error slice. An unknown policy is reported the
// same way and replaced by PolicyStrict.
func NewRegistry(policy NamePolicy, seeds ...string) (*Registry, []error) {
	var errs []error
	if !policy.Valid() {
		errs = append(errs, fmt.Errorf("unknown channel name policy %q, using %q", policy, PolicyStrict))
		policy = PolicyStrict
	}

	r := &Registry{
		names:   newNameValidator(policy),
		byID:    make(map[ID]*Channel),
		byName:  make(map[string]ID),
		dedupes: policy == PolicyStrict,
	}

	for _, name := range seeds {
		if _, err := r.Create(name); err != nil {
			errs = append(errs, err)
		}
	}
	return r, errs
}

// NewDefaultRegistry returns a strict registry seeded with DefaultSeeds.
func NewDefaultRegistry() *Registry {
	r, _ := NewRegistry(PolicyStrict, DefaultSeeds...)
	return r
}

// Create validates name and stores a new channel with an empty history.
func (r *Registry) Create(name string) (Channel, error) {
	if err := r.names.check(name); err != nil {
		return Channel{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dedupes {
		if _, taken := r.byName[name]; taken {
			return Channel{}, duplicateName(name)
		}
	}

	r.nextID++
	ch := &Channel{ID: r.nextID, Name: name, Messages: []Message{}}
	r.byID[ch.ID] = ch
	r.order = append(r.order, ch.ID)
	r.byName[name] = ch.ID
	return ch.clone(), nil
}

// Rename changes the name of an existing channel, keeping its id and
// history. A channel may be renamed to its own current name.
func (r *Registry) Rename(id ID, newName string) (Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.byID[id]
	if !ok {
		return Channel{}, &NotFoundError{ID: id}
	}

	if err := r.names.check(newName); err != nil {
		return Channel{}, err
	}

	if r.dedupes {
		if owner, taken := r.byName[newName]; taken && owner != id {
			return Channel{}, duplicateName(newName)
		}
	}

	if r.byName[ch.Name] == id {
		delete(r.byName, ch.Name)
	}
	ch.Name = newName
	r.byName[newName] = id
	return ch.clone(), nil
}

// Delete removes a channel and its history. It is idempotent and reports
// whether a channel was actually removed.
func (r *Registry) Delete(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.byID[id]
	if !ok {
		return false
	}

	delete(r.byID, id)
	if r.byName[ch.Name] == id {
		delete(r.byName, ch.Name)
	}
	r.order = lo.Without(r.order, id)
	return true
}

// Get returns a copy of the channel with the given id.
func (r *Registry) Get(id ID) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.byID[id]
	if !ok {
		return Channel{}, false
	}
	return ch.clone(), true
}

// List returns a snapshot of all live channels in insertion order.
func (r *Registry) List() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id ID, _ int) Channel {
		return r.byID[id].clone()
	})
}

// AppendMessage adds msg to the history of channel id. The existence check
// and the append happen under one lock, so a concurrent Delete either wins
// entirely or loses entirely.
func (r *Registry) AppendMessage(id ID, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	ch.Messages = append(ch.Messages, msg)
	return nil
}

// Len returns the number of live channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
