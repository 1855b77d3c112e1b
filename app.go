package main

import (
	"time"

	"WooCostAdjuster/internal/adjuster"
	"WooCostAdjuster/internal/bulk"
	"WooCostAdjuster/internal/cache"
	"WooCostAdjuster/internal/catalog"
	"WooCostAdjuster/internal/cleanup"
	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/internal/database"
	httphandler "WooCostAdjuster/internal/handlers/http"
	"WooCostAdjuster/internal/telegram"
	"WooCostAdjuster/internal/wooapi"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// app holds the wired service components.
type app struct {
	db       *sqlx.DB
	store    catalog.Store
	settings cache.CacheSettings
	job      *bulk.Job
	handler  *httphandler.Handler
	cleanup  *cleanup.Service
}

// notifier forwards to the process Telegram bot, which BotStart installs later.
type notifier struct{}

func (notifier) Notify(text string) {
	telegram.SendMessageToTelegramWithLogError(text)
}

func newApp(cfg *config.Config) (*app, error) {
	logger := logging.GetLogger()
	logger.Info("Start newApp")
	defer logger.Info("End newApp")

	logging.SetDebug(cfg.LOG.Debug != 0)

	if cfg.SERVICE.Token == "" {
		logger.Warn("SERVICE Token is empty, every cost endpoint will answer 403")
	}

	db, err := database.Open(cfg.DBSQLITE.DB)
	if err != nil {
		return nil, errors.Wrap(err, "failed database.Open")
	}

	api := wooapi.NewAPI(cfg.WOOCOMMERCE.URL, cfg.WOOCOMMERCE.Key, cfg.WOOCOMMERCE.Secret, cfg.WOOCOMMERCE.RPS)
	store := catalog.NewWooStore(api)

	settings := cache.NewCacheSettings(db, cfg)
	if err := settings.Refresh(); err != nil {
		logger.Errorf("failed RefreshSettings: %v", err)
	}

	job := bulk.NewJob(store,
		bulk.NewDBProgressStore(db, time.Duration(cfg.COSTADJUSTER.ProgressTTL)*time.Second),
		bulk.NewDBCursorStore(db),
		settings,
		bulk.Options{
			StartBatchSize: cfg.COSTADJUSTER.StartBatchSize,
			StepBatchSize:  cfg.COSTADJUSTER.StepBatchSize,
			RecentLogs:     cfg.COSTADJUSTER.RecentLogs,
		})
	job.SetNotifier(notifier{})

	handler := &httphandler.Handler{
		Job:      job,
		Adjuster: adjuster.New(store, settings, adjuster.NewDBRecorder(db, cfg.LOG.SyncLogLimit)),
		Settings: settings,
		DB:       db,
		Token:    cfg.SERVICE.Token,
		Notifier: notifier{},
	}

	return &app{
		db:       db,
		store:    store,
		settings: settings,
		job:      job,
		handler:  handler,
		cleanup:  cleanup.NewService(db, cfg.LOG.KeepDays, 24*time.Hour, notifier{}),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logging.GetLogger().Errorf("failed db.Close(): %v", err)
	}
}
