package cache

import (
	"strconv"
	"sync"
	"time"

	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/internal/database/model/option"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	OPTION_ENABLED    = "cost_adjuster_enabled"
	OPTION_MULTIPLIER = "cost_adjuster_multiplier"
)

type Settings struct {
	Enabled    bool    `json:"enabled"`
	Multiplier float64 `json:"multiplier"`
}

type CacheSettings interface {
	Refresh() error
	Get() Settings
	Enabled() bool
	Multiplier() float64
	// Save sanitizes and stores the settings; warning explains a replaced multiplier.
	Save(enabled bool, multiplier string) (s Settings, warning string, err error)
}

var cacheSettingsGlobal *settings

type settings struct {
	mu          sync.RWMutex
	db          *sqlx.DB
	defaults    Settings
	timeUpdate  time.Duration
	lastRefresh time.Time
	current     Settings
	now         func() time.Time
}

// NewCacheSettings builds the settings cache over the Option table; values
// not stored yet come from the COSTADJUSTER config section.
func NewCacheSettings(db *sqlx.DB, cfg *config.Config) CacheSettings {
	defaults := Settings{
		Enabled:    cfg.COSTADJUSTER.Enabled != 0,
		Multiplier: cfg.Multiplier(),
	}
	cacheSettingsGlobal = &settings{
		db:         db,
		defaults:   defaults,
		timeUpdate: time.Duration(cfg.CACHE.TimeUpdate) * time.Second,
		current:    defaults,
		now:        time.Now,
	}
	return cacheSettingsGlobal
}

func GetCacheSettings() CacheSettings {
	return cacheSettingsGlobal
}

func (s *settings) Refresh() error {
	logger := logging.GetLogger()
	logger.Debug("Start RefreshSettings")
	defer logger.Debug("End RefreshSettings")

	now := s.now()
	next := s.defaults

	o, err := option.Get(s.db, OPTION_ENABLED, now)
	switch {
	case err == nil:
		next.Enabled = o.Value == "yes"
	case !errors.Is(err, option.ErrNotFound):
		return errors.Wrap(err, "failed to read enabled setting")
	}

	o, err = option.Get(s.db, OPTION_MULTIPLIER, now)
	switch {
	case err == nil:
		m, errParse := strconv.ParseFloat(o.Value, 64)
		if errParse != nil {
			logger.Errorf("Stored multiplier %q is not a number", o.Value)
			m = 0
		}
		next.Multiplier = m
	case !errors.Is(err, option.ErrNotFound):
		return errors.Wrap(err, "failed to read multiplier setting")
	}

	s.mu.Lock()
	s.current = next
	s.lastRefresh = now
	s.mu.Unlock()

	logger.Debugf("Settings: enabled=%t multiplier=%.2f", next.Enabled, next.Multiplier)
	return nil
}

// Get returns the cached settings, refreshing them once they are older than TimeUpdate.
func (s *settings) Get() Settings {
	s.mu.RLock()
	stale := s.lastRefresh.IsZero() || s.now().Sub(s.lastRefresh) >= s.timeUpdate
	current := s.current
	s.mu.RUnlock()

	if !stale {
		return current
	}
	if err := s.Refresh(); err != nil {
		logging.GetLogger().Errorf("failed RefreshSettings: %v", err)
		return current
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *settings) Enabled() bool {
	return s.Get().Enabled
}

func (s *settings) Multiplier() float64 {
	return s.Get().Multiplier
}

func (s *settings) Save(enabled bool, multiplier string) (Settings, string, error) {
	logger := logging.GetLogger()
	logger.Info("Start SaveSettings")
	defer logger.Info("End SaveSettings")

	m, warning := config.SanitizeMultiplier(multiplier)
	if warning != "" {
		logger.Warnf("Multiplier %q: %s", multiplier, warning)
	}

	enabledValue := "no"
	if enabled {
		enabledValue = "yes"
	}

	now := s.now()
	if err := option.Set(s.db, OPTION_ENABLED, enabledValue, 0, now); err != nil {
		return Settings{}, "", errors.Wrap(err, "failed to store enabled setting")
	}
	if err := option.Set(s.db, OPTION_MULTIPLIER, strconv.FormatFloat(m, 'f', 2, 64), 0, now); err != nil {
		return Settings{}, "", errors.Wrap(err, "failed to store multiplier setting")
	}

	if err := s.Refresh(); err != nil {
		return Settings{}, "", err
	}
	return s.Get(), warning, nil
}
