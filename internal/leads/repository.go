// Package leads implements the saved-lead repository. The full lead list is
// held in memory and mirrored to a single key-value slot after every change.
package leads

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/store"
)

// DefaultKey is the slot the lead list is stored under.
const DefaultKey = "leads"

// Repository owns the persisted lead list and all mutations to it.
type Repository struct {
	kv  store.KV
	key string

	mu    sync.Mutex
	leads []model.BusinessLead
}

// NewRepository creates a Repository over kv. Call Load before use to pick
// up previously saved leads.
func NewRepository(kv store.KV, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{kv: kv, key: key}
}

// Open creates a Repository and loads its state.
func Open(ctx context.Context, kv store.KV, key string) *Repository {
	r := NewRepository(kv, key)
	r.Load(ctx)
	return r
}

// Load replaces the in-memory list with what is in storage. A missing slot,
// unreadable storage or corrupt content all yield an empty list.
func (r *Repository) Load(ctx context.Context) []model.BusinessLead {
	log := zap.L().With(zap.String("key", r.key))

	loaded := r.read(ctx, log)

	r.mu.Lock()
	r.leads = loaded
	r.mu.Unlock()

	log.Debug("leads loaded", zap.Int("count", len(loaded)))
	return cloneAll(loaded)
}

func (r *Repository) read(ctx context.Context, log *zap.Logger) []model.BusinessLead {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, store.ErrNotFound) {
		return []model.BusinessLead{}
	}
	if err != nil {
		log.Warn("lead storage unreadable, starting empty", zap.Error(err))
		return []model.BusinessLead{}
	}

	var out []model.BusinessLead
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn("stored leads are corrupt, starting empty", zap.Error(err))
		return []model.BusinessLead{}
	}
	if out == nil {
		out = []model.BusinessLead{}
	}
	return out
}

// Save overwrites storage with leads and makes it the in-memory list.
func (r *Repository) Save(ctx context.Context, leads []model.BusinessLead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneAll(leads)
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.leads = next
	return nil
}

// Add appends lead unless one with the same id is already saved. It reports
// whether the lead was added.
func (r *Repository) Add(ctx context.Context, lead model.BusinessLead) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(lead.ID) >= 0 {
		return false, nil
	}

	next := append(cloneAll(r.leads), lead.Clone())
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.leads = next
	return true, nil
}

// UpdateStatus changes only the status of the lead with id. Unknown ids are
// ignored. It reports whether a lead was changed.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) (bool, error) {
	if !status.Valid() {
		return false, eris.Errorf("leads: invalid status %q", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := cloneAll(r.leads)
	next[i].Status = status
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.leads = next
	return true, nil
}

// List returns a copy of all saved leads in insertion order.
func (r *Repository) List() []model.BusinessLead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.leads)
}

// Stats summarizes the saved pipeline.
type Stats struct {
	Total      int `json:"total"`
	Interested int `json:"interested"`
	Converted  int `json:"converted"`
	NoWebsite  int `json:"noWebsite"`
}

// Stats counts saved leads by stage and website presence.
func (r *Repository) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{Total: len(r.leads)}
	for _, l := range r.leads {
		switch l.Status {
		case model.LeadStatusInterested:
			s.Interested++
		case model.LeadStatusConverted:
			s.Converted++
		}
		if !l.HasWebsite() {
			s.NoWebsite++
		}
	}
	return s
}

// Get returns the saved lead with id.
func (r *Repository) Get(id string) (model.BusinessLead, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.BusinessLead{}, false
	}
	return r.leads[i].Clone(), true
}

// Len returns the number of saved leads.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.leads)
}

func (r *Repository) indexOf(id string) int {
	for i := range r.leads {
		if r.leads[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (r *Repository) persist(ctx context.Context, leads []model.BusinessLead) error {
	data, err := json.Marshal(leads)
	if err != nil {
		return eris.Wrap(err, "leads: marshal")
	}
	if err := r.kv.Put(ctx, r.key, data); err != nil {
		return eris.Wrap(err, "leads: persist")
	}
	return nil
}

func cloneAll(in []model.BusinessLead) []model.BusinessLead {
	out := make([]model.BusinessLead, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
