package ledger

import (
	"strings"
	"sync"
)

// Participant is someone who can pay for or share an expense. Only ID matters
// to the ledger; the rest is carried for reporting.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DisplayName returns Name, or the ID when no name was given.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Directory is the append-only set of known participants.
type Directory struct {
	mu    sync.RWMutex
	byID  map[string]Participant
	order []string
}

func NewDirectory() *Directory {
	return &Directory{byID: make(map[string]Participant)}
}

// Register adds p. Registering an id twice fails with ErrDuplicateParticipant.
func (d *Directory) Register(p Participant) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return &Error{Kind: ErrInvalidParticipant, Msg: "id is empty"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byID[p.ID]; exists {
		return &Error{Kind: ErrDuplicateParticipant, Msg: p.ID}
	}
	d.byID[p.ID] = p
	d.order = append(d.order, p.ID)
	return nil
}

func (d *Directory) Lookup(id string) (Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[id]
	if !ok {
		return Participant{}, unknownParticipant(id)
	}
	return p, nil
}

func (d *Directory) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byID[id]
	return ok
}

// List returns participants in registration order.
func (d *Directory) List() []Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Participant, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id])
	}
	return out
}
