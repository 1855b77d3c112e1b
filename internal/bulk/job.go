// Package bulk recomputes the cost of every published catalog item in
// resumable slices. Start seeds the cursor and handles the first slice; the
// polling client calls Step until the progress reports complete.
package bulk

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"WooCostAdjuster/internal/catalog"
	"WooCostAdjuster/internal/cost"
	"WooCostAdjuster/pkg/logging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNoItemsFound = errors.New("No products found to update.")

const messageUpdateFailed = "Could not update the product cost."

// MultiplierSource yields the multiplier in effect; it is read once per Start or Step.
type MultiplierSource interface {
	Multiplier() float64
}

type Notifier interface {
	Notify(text string)
}

type Options struct {
	StartBatchSize int
	StepBatchSize  int
	RecentLogs     int
}

type Job struct {
	mu sync.Mutex

	store      catalog.Store
	progress   ProgressStore
	cursor     CursorStore
	multiplier MultiplierSource
	notifier   Notifier
	opts       Options
	now        func() time.Time
}

func NewJob(store catalog.Store, progress ProgressStore, cursor CursorStore, multiplier MultiplierSource, opts Options) *Job {
	if opts.StartBatchSize <= 0 {
		opts.StartBatchSize = 25
	}
	if opts.StepBatchSize <= 0 {
		opts.StepBatchSize = 50
	}
	if opts.RecentLogs <= 0 {
		opts.RecentLogs = 50
	}
	return &Job{
		store:      store,
		progress:   progress,
		cursor:     cursor,
		multiplier: multiplier,
		opts:       opts,
		now:        time.Now,
	}
}

// SetNotifier registers the receiver of completion messages.
func (j *Job) SetNotifier(n Notifier) {
	j.notifier = n
}

// Start resets the run over all published items and processes the first slice.
func (j *Job) Start(ctx context.Context) (*Summary, error) {
	logger := logging.GetLogger()
	logger.Info("Start bulk.Start")
	defer logger.Info("End bulk.Start")

	// runs after the unlock below
	var notice string
	defer func() { j.notify(notice) }()

	j.mu.Lock()
	defer j.mu.Unlock()

	ids, err := j.store.ListActiveIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed ListActiveIDs")
	}
	if len(ids) == 0 {
		logger.Info("No products found to update")
		return nil, ErrNoItemsFound
	}

	p := newProgress()
	p.RunID = uuid.NewString()
	p.Total = len(ids)
	logger = logger.GetLoggerWithField("run", p.RunID)
	logger.Infof("Found %d products to process", p.Total)

	if err := j.progress.Save(ctx, p); err != nil {
		return nil, err
	}
	if err := j.cursor.Save(ctx, ids); err != nil {
		return nil, err
	}

	m := j.multiplier.Multiplier()
	firstBatch := ids
	if len(firstBatch) > j.opts.StartBatchSize {
		firstBatch = firstBatch[:j.opts.StartBatchSize]
	}

	rest, err := j.runBatch(ctx, p, ids, j.opts.StartBatchSize, m)
	if err != nil {
		return nil, err
	}
	if notice, err = j.finishBatch(ctx, p, rest); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Processing %d products. Started with %d products. Check progress for updates.",
		p.Total, len(firstBatch))
	logger.Infof("Initial batch processed. Response: %s", message)

	return &Summary{Message: message, Progress: *p}, nil
}

// Step processes the next slice of the cursor and returns the progress.
func (j *Job) Step(ctx context.Context) (*Progress, error) {
	logger := logging.GetLogger()
	logger.Debug("Start bulk.Step")
	defer logger.Debug("End bulk.Step")

	var notice string
	defer func() { j.notify(notice) }()

	j.mu.Lock()
	defer j.mu.Unlock()

	p, err := j.progress.Load(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := j.cursor.Load(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		if !p.Complete && p.Processed >= p.Total {
			p.Complete = true
			if err := j.progress.Save(ctx, p); err != nil {
				return nil, err
			}
		}
		return p, nil
	}

	if p.Total == 0 {
		// the progress record expired while the cursor still holds work
		p.Total = p.Processed + len(ids)
		logger.Infof("Progress expired, resuming with %d remaining products", len(ids))
	}

	rest, err := j.runBatch(ctx, p, ids, j.opts.StepBatchSize, j.multiplier.Multiplier())
	if err != nil {
		return nil, err
	}
	if notice, err = j.finishBatch(ctx, p, rest); err != nil {
		return nil, err
	}

	logger.Debugf("Progress: %d/%d success:%d failed:%d", p.Processed, p.Total, p.Success, p.Failed)
	return p, nil
}

// Progress returns the stored progress without processing anything.
func (j *Job) Progress(ctx context.Context) (*Progress, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress.Load(ctx)
}

// runBatch processes up to size items from the front of ids and returns the
// IDs still pending. Progress is saved after every item.
func (j *Job) runBatch(ctx context.Context, p *Progress, ids []int, size int, m float64) ([]int, error) {
	batch := ids
	if len(batch) > size {
		batch = batch[:size]
	}

	for i, id := range batch {
		if err := ctx.Err(); err != nil {
			// keep the unprocessed part of the slice for the next call
			if errSave := j.cursor.Save(ctx, ids[i:]); errSave != nil {
				logging.GetLogger().Errorf("failed to save cursor: %v", errSave)
			}
			return nil, errors.Wrap(err, "bulk batch interrupted")
		}

		j.processItem(ctx, p, id, m)

		if err := j.progress.Save(ctx, p); err != nil {
			return nil, err
		}
	}

	return ids[len(batch):], nil
}

// finishBatch stores the cursor and, once it is empty, marks the run complete
// and returns the completion notice.
func (j *Job) finishBatch(ctx context.Context, p *Progress, rest []int) (string, error) {
	if err := j.cursor.Save(ctx, rest); err != nil {
		return "", err
	}
	if len(rest) > 0 {
		return "", nil
	}

	p.Complete = true
	if err := j.progress.Save(ctx, p); err != nil {
		return "", err
	}

	logging.GetLogger().Infof("Bulk cost update complete: %d processed, %d success, %d failed",
		p.Processed, p.Success, p.Failed)
	return fmt.Sprintf("Bulk cost update complete.\nProcessed: %d\nSuccess: %d\nFailed: %d",
		p.Processed, p.Success, p.Failed), nil
}

func (j *Job) notify(text string) {
	if text != "" && j.notifier != nil {
		j.notifier.Notify(text)
	}
}

// processItem updates one top level item and records the outcome. Item
// failures are counted, never returned.
func (j *Job) processItem(ctx context.Context, p *Progress, id int, m float64) {
	logger := logging.GetLogger()

	p.Processed++

	item, err := j.store.Get(ctx, id)
	if err != nil {
		logger.Errorf("Error processing product %d: %v", id, err)
		p.Failed++
		message := fmt.Sprintf("Invalid product ID: %d", id)
		if !errors.Is(err, catalog.ErrItemNotFound) {
			message = itemMessage(err)
		}
		p.addLog(j.now(), fmt.Sprintf("Product #%d", id), message, STATUS_ERROR, j.opts.RecentLogs)
		return
	}

	if item.IsVariable() {
		err = j.updateVariations(ctx, p, item, m)
		if err == nil {
			p.addLog(j.now(), item.DisplayName(""), "Cost updated successfully", STATUS_SUCCESS, j.opts.RecentLogs)
		}
	} else {
		err = j.updateItem(ctx, p, item, item.DisplayName(""), m)
	}

	if err != nil {
		logger.Errorf("Error processing product %d: %v", id, err)
		p.Failed++
		p.addLog(j.now(), item.DisplayName(""), itemMessage(err), STATUS_ERROR, j.opts.RecentLogs)
		return
	}
	p.Success++
}

// updateVariations updates every variation that still resolves; the first
// failing variation fails the item.
func (j *Job) updateVariations(ctx context.Context, p *Progress, parent *catalog.Item, m float64) error {
	for _, variationID := range parent.Variations {
		variation, err := j.store.GetVariation(ctx, parent.ID, variationID)
		if err != nil {
			if errors.Is(err, catalog.ErrItemNotFound) {
				logging.GetLogger().Debugf("Variation %d of %d not found, skipped", variationID, parent.ID)
				continue
			}
			return err
		}
		if variation.ParentID == 0 {
			variation.ParentID = parent.ID
		}
		if err := j.updateItem(ctx, p, variation, variation.DisplayName(parent.Name), m); err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) updateItem(ctx context.Context, p *Progress, item *catalog.Item, name string, m float64) error {
	r := cost.Calculate(item.RegularPrice, m)
	if !r.Valid() {
		return r.Err
	}

	oldQB := item.Meta[cost.MetaQuickBooksCost]
	oldCOG := item.Meta[cost.MetaCostOfGoods]

	newCost := cost.Format(r.Cost)
	values := make(map[string]string, len(cost.MetaFields))
	for _, key := range cost.MetaFields {
		values[key] = newCost
	}
	if err := j.store.SetMeta(ctx, item, values); err != nil {
		return err
	}

	message := fmt.Sprintf("Cost updated from QB:%s/COG:%s to %s", formatOld(oldQB), formatOld(oldCOG), newCost)
	logging.GetLogger().Debugf("%s (%d): %s", name, item.ID, message)
	p.addLog(j.now(), name, message, STATUS_SUCCESS, j.opts.RecentLogs)
	return nil
}

// itemMessage is the recent log text of a failed item. Store and transport
// details only go to the process log.
func itemMessage(err error) string {
	switch {
	case errors.Is(err, cost.ErrNoRegularPrice):
		return cost.ErrNoRegularPrice.Error()
	case errors.Is(err, cost.ErrInvalidMultiplier):
		return cost.ErrInvalidMultiplier.Error()
	default:
		return messageUpdateFailed
	}
}

func formatOld(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f == 0 {
		return "not set"
	}
	return cost.Format(f)
}
