package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/capmatchph/capital-match-api/internal/models"
)

// Store is the persistence contract for the append-only log. Append
// never mutates or removes prior entries.
type Store interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f Filter, limit, offset int) ([]models.AuditLog, int64, error)
}

type Filter struct {
	ActorID *uint
	Action  Action
	From    *time.Time
	To      *time.Time
}

// Recorder assigns write-time timestamps that are monotonically
// non-decreasing within the process; ties are broken by the insertion
// sequence (the row id).
type Recorder struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	lastTS time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
	}
}

func (r *Recorder) Record(
	ctx context.Context,
	actorID *uint,
	action Action,
	target *Target,
	details map[string]any,
	originAddr *string,
) (*models.AuditLog, error) {

	var payload string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = string(b)
		}
	}

	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     string(action),
		Details:    payload,
		OriginAddr: originAddr,
		CreatedAt:  r.stamp(),
	}

	if target != nil {
		entry.TargetType = &target.Type
		entry.TargetID = &target.ID
	}

	if err := r.store.Append(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Query is read-only and reverse-chronological; repeated calls over a
// fixed window return identical results absent new writes.
func (r *Recorder) Query(ctx context.Context, f Filter, page, limit int) ([]models.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.store.List(ctx, f, limit, (page-1)*limit)
}

func (r *Recorder) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()
	if ts.Before(r.lastTS) {
		ts = r.lastTS
	}
	r.lastTS = ts
	return ts
}
