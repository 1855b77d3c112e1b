package bulk

import (
	"context"
	"encoding/json"
	"time"

	"WooCostAdjuster/internal/database/model/option"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	OPTION_PROGRESS = "cost_adjuster_progress"
	OPTION_CURSOR   = "cost_adjuster_remaining"
)

type ProgressStore interface {
	// Load returns the stored progress or a fresh zero state when there is none.
	Load(ctx context.Context) (*Progress, error)
	Save(ctx context.Context, p *Progress) error
}

type CursorStore interface {
	Load(ctx context.Context) ([]int, error)
	Save(ctx context.Context, ids []int) error
}

// DBProgressStore keeps the progress in the Option table with an expiry.
type DBProgressStore struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

func NewDBProgressStore(db *sqlx.DB, ttl time.Duration) *DBProgressStore {
	return &DBProgressStore{db: db, ttl: ttl, now: time.Now}
}

func (s *DBProgressStore) Load(ctx context.Context) (*Progress, error) {
	o, err := option.Get(s.db, OPTION_PROGRESS, s.now())
	if err != nil {
		if errors.Is(err, option.ErrNotFound) {
			logging.GetLogger().Debug("No progress data stored")
			return newProgress(), nil
		}
		return nil, errors.Wrap(err, "failed to load progress")
	}

	p := newProgress()
	if err := json.Unmarshal([]byte(o.Value), p); err != nil {
		return nil, errors.Wrap(err, "failed json.Unmarshal(progress)")
	}
	if p.RecentLogs == nil {
		p.RecentLogs = []LogEntry{}
	}
	return p, nil
}

func (s *DBProgressStore) Save(ctx context.Context, p *Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "failed json.Marshal(progress)")
	}
	if err := option.Set(s.db, OPTION_PROGRESS, string(b), s.ttl, s.now()); err != nil {
		return errors.Wrap(err, "failed to save progress")
	}
	return nil
}

// DBCursorStore keeps the remaining item IDs in the Option table without expiry.
type DBCursorStore struct {
	db *sqlx.DB
}

func NewDBCursorStore(db *sqlx.DB) *DBCursorStore {
	return &DBCursorStore{db: db}
}

func (s *DBCursorStore) Load(ctx context.Context) ([]int, error) {
	o, err := option.Get(s.db, OPTION_CURSOR, time.Now())
	if err != nil {
		if errors.Is(err, option.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load cursor")
	}

	var ids []int
	if err := json.Unmarshal([]byte(o.Value), &ids); err != nil {
		return nil, errors.Wrap(err, "failed json.Unmarshal(cursor)")
	}
	return ids, nil
}

func (s *DBCursorStore) Save(ctx context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return errors.Wrap(err, "failed json.Marshal(cursor)")
	}
	if err := option.Set(s.db, OPTION_CURSOR, string(b), 0, time.Now()); err != nil {
		return errors.Wrap(err, "failed to save cursor")
	}
	return nil
}
