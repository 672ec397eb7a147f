package engine

import (
	"context"
	"database/sql"
	"time"

	"hypeos/internal/hypeos"
	"hypeos/internal/logger"
	"hypeos/internal/storage"
)

type Options struct {
	Rules    *hypeos.Engine
	Clock    Clock
	Location *time.Location
	Logger   *logger.Logger
}

// Service runs the completion data flow and the read models over one database.
// Mutations for a given user are serialized.
type Service struct {
	db    *sql.DB
	store *storage.Store
	rules *hypeos.Engine
	clock Clock
	loc   *time.Location
	log   *logger.Logger
	locks *userLocks
}

func NewService(db *sql.DB, opts Options) *Service {
	if opts.Rules == nil {
		opts.Rules = hypeos.MustNew(hypeos.DefaultRules())
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		db:    db,
		store: storage.NewStore(db),
		rules: opts.Rules,
		clock: opts.Clock,
		loc:   opts.Location,
		log:   opts.Logger.WithComponent("engine"),
		locks: newUserLocks(),
	}
}

func (s *Service) Rules() *hypeos.Engine    { return s.rules }
func (s *Service) Store() *storage.Store    { return s.store }
func (s *Service) Location() *time.Location { return s.loc }

// Now is the service clock in the configured calendar.
func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// loadState reads userID's record, creating a blank one in memory when absent,
// and rolls the daily quests over when the stored reset date is not today.
// dirty reports whether the returned state differs from what is stored.
func (s *Service) loadState(ctx context.Context, r *storage.Repos, userID string, now time.Time) (st hypeos.UserState, dirty bool, err error) {
	saved, err := r.Users.Load(ctx, userID)
	if err != nil {
		return hypeos.UserState{}, false, err
	}
	if saved == nil {
		saved = &hypeos.UserState{UserID: userID}
		dirty = true
	}
	st = *saved

	today := hypeos.DateKey(now)
	var prev *hypeos.QuestState
	if len(st.Quests.Quests) > 0 {
		prev = &st.Quests
	}
	quests := s.rules.InitializeQuests(prev, today)
	if st.Quests.Progress.LastResetDate != today || len(st.Quests.Quests) != len(quests.Quests) {
		dirty = true
		if st.Quests.Progress.LastResetDate != "" && st.Quests.Progress.LastResetDate != today {
			s.log.Debugw("daily quests reset", "user_id", userID, "from", st.Quests.Progress.LastResetDate, "to", today)
		}
	}
	st.Quests = quests
	return st, dirty, nil
}

// State returns userID's current record with today's quests, persisting the
// daily reset when one happened.
func (s *Service) State(ctx context.Context, userID string) (hypeos.UserState, error) {
	if err := validateUserID(userID); err != nil {
		return hypeos.UserState{}, err
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.Now()
	var st hypeos.UserState
	err := s.store.InTx(ctx, func(r *storage.Repos) error {
		var (
			dirty bool
			err   error
		)
		st, dirty, err = s.loadState(ctx, r, userID, now)
		if err != nil {
			return err
		}
		if dirty {
			return r.Users.Save(ctx, st)
		}
		return nil
	})
	if err != nil {
		return hypeos.UserState{}, err
	}
	return st, nil
}
