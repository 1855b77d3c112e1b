package adjuster

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
	"github.com/jmoiron/sqlx"
)

const notAvailable = "N/A"

type entry struct {
	typ           string
	id            int
	name          string
	cost          float64
	hasCost       bool
	price         string
	multiplier    float64
	hasMultiplier bool
	status        string
	message       string
	source        string
}

func (a *Adjuster) record(e entry) {
	row := &synclog.SyncLog{
		ProductType:  e.typ,
		ProductID:    e.id,
		ProductName:  e.name,
		Cost:         notAvailable,
		RegularPrice: notAvailable,
		Multiplier:   notAvailable,
		Status:       e.status,
		Message:      e.message,
		Source:       e.source,
	}
	if e.hasCost {
		row.Cost = fmt.Sprintf("%.2f", e.cost)
	}
	if p, err := strconv.ParseFloat(strings.TrimSpace(e.price), 64); err == nil {
		row.RegularPrice = fmt.Sprintf("%.2f", p)
	}
	if e.hasMultiplier {
		row.Multiplier = fmt.Sprintf("%.4f", e.multiplier)
	}

	logger := logging.GetLogger()
	line := fmt.Sprintf("[SYNC:%s] [TYPE:%s] Product: %s (#%d) | Price: $%s | Multiplier: %s | Calculated Cost: $%s | %s",
		row.Source, row.ProductType, row.ProductName, row.ProductID, row.RegularPrice, row.Multiplier, row.Cost, row.Message)
	switch e.status {
	case synclog.STATUS_ERROR:
		logger.Error(line)
	case synclog.STATUS_WARNING:
		logger.Warn(line)
	default:
		logger.Info(line)
	}

	if a.recorder != nil {
		a.recorder.Record(row)
	}
}

// DBRecorder appends entries to the SyncLog table, keeping at most limit rows.
type DBRecorder struct {
	db    *sqlx.DB
	limit int
}

func NewDBRecorder(db *sqlx.DB, limit int) *DBRecorder {
	return &DBRecorder{db: db, limit: limit}
}

func (r *DBRecorder) Record(row *synclog.SyncLog) {
	if err := row.Insert(r.db, r.limit, time.Now()); err != nil {
		logging.GetLogger().Errorf("failed to store sync log entry: %v", err)
	}
}
