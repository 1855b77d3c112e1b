// Package adjuster rewrites the cost fields of product payloads right before
// they are pushed to the accounting service. Every decision is recorded in
// the sync log.
package adjuster

import (
	"context"
	"fmt"
	"strings"

	"WooCostAdjuster/internal/catalog"
	"WooCostAdjuster/internal/cost"
	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
	"github.com/pkg/errors"
)

// Payload is the product record about to be sent, keyed by field name.
type Payload map[string]interface{}

func (p Payload) clone() Payload {
	out := make(Payload, len(p)+4)
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

type Settings interface {
	Enabled() bool
	Multiplier() float64
}

type Recorder interface {
	Record(entry *synclog.SyncLog)
}

type Adjuster struct {
	store    catalog.Store
	settings Settings
	recorder Recorder
}

func New(store catalog.Store, settings Settings, recorder Recorder) *Adjuster {
	return &Adjuster{store: store, settings: settings, recorder: recorder}
}

// AdjustProduct handles the payload of a simple or variable product.
func (a *Adjuster) AdjustProduct(ctx context.Context, id int, payload Payload) Payload {
	logger := logging.GetLogger()
	logger.Debugf("Start AdjustProduct #%d", id)
	defer logger.Debugf("End AdjustProduct #%d", id)

	if !a.settings.Enabled() {
		a.record(entry{typ: "Unknown", id: id, name: "Product", status: synclog.STATUS_INFO,
			message: "Cost adjustment disabled. Skipping.", source: synclog.SOURCE_DIRECT})
		return payload
	}

	item, ok := a.lookup(ctx, id)
	if !ok {
		a.record(entry{typ: "Unknown", id: id, name: "Unknown Product", status: synclog.STATUS_ERROR,
			message: "Product not found. Skipping cost adjustment.", source: synclog.SOURCE_DIRECT})
		return payload
	}

	m := a.settings.Multiplier()
	if item.IsVariable() {
		a.record(entry{typ: typeLabel(item), id: id, name: item.DisplayName(""), status: synclog.STATUS_INFO,
			message: "Variable product detected. Processing all variations.", source: synclog.SOURCE_DIRECT})
		return a.adjustVariable(ctx, item, payload, m)
	}
	return a.adjustSimple(item, payload, m)
}

func (a *Adjuster) adjustSimple(item *catalog.Item, payload Payload, m float64) Payload {
	r := cost.Calculate(item.RegularPrice, m)
	e := entry{typ: typeLabel(item), id: item.ID, name: item.DisplayName(""), price: item.RegularPrice,
		multiplier: m, hasMultiplier: true, source: synclog.SOURCE_DIRECT}

	if !r.Valid() {
		e.status = synclog.STATUS_ERROR
		e.message = failureMessage(r.Err)
		a.record(e)
		return payload
	}

	e.cost, e.hasCost = r.Cost, true
	e.status = synclog.STATUS_SUCCESS
	e.message = "Cost calculated successfully"
	a.record(e)

	out := payload.clone()
	if out.has(cost.FieldPurchaseCost) {
		out[cost.FieldPurchaseCost] = r.Cost
	}
	out[cost.FieldUnitPrice] = r.Cost
	out[cost.FieldQuickBooksCost] = r.Cost
	out[cost.FieldProductCost] = r.Cost
	if out.has(cost.FieldCostOfGoods) {
		out[cost.FieldCostOfGoods] = r.Cost
	}
	logging.GetLogger().Debugf("Cost fields updated for product #%d: %s", item.ID, cost.Format(r.Cost))
	return out
}

func (a *Adjuster) adjustVariable(ctx context.Context, item *catalog.Item, payload Payload, m float64) Payload {
	name := item.DisplayName("")
	base := entry{typ: "Variable", id: item.ID, name: name, multiplier: m, hasMultiplier: true, source: synclog.SOURCE_VARIABLE}

	if len(item.Variations) == 0 {
		e := base
		e.status, e.message = synclog.STATUS_WARNING, "No variations found. Processing as simple product."
		a.record(e)
		return a.adjustSimple(item, payload, m)
	}

	e := base
	e.status, e.message = synclog.STATUS_INFO, fmt.Sprintf("Found %d variations", len(item.Variations))
	a.record(e)

	costs := a.variationCosts(ctx, item, m, synclog.SOURCE_VARIABLE, true)
	avg, ok := cost.Average(costs)
	if !ok {
		e := base
		e.status, e.message = synclog.STATUS_ERROR, "Could not calculate valid cost for any variations. Skipping cost adjustment."
		a.record(e)
		return payload
	}

	e = base
	e.cost, e.hasCost = avg, true
	e.status, e.message = synclog.STATUS_SUCCESS, fmt.Sprintf("Using average cost (based on %d variations)", len(costs))
	a.record(e)

	out := payload.clone()
	if out.has(cost.FieldPurchaseCost) {
		out[cost.FieldPurchaseCost] = avg
	}
	out[cost.FieldUnitPrice] = avg
	out[cost.FieldProductCost] = avg
	return out
}

// variationCosts returns the valid costs of the item's variations and records
// each outcome. Missing variations are recorded only when logMissing is set.
func (a *Adjuster) variationCosts(ctx context.Context, parent *catalog.Item, m float64, source string, logMissing bool) []float64 {
	var costs []float64
	for _, variationID := range parent.Variations {
		variation, ok := a.lookupVariation(ctx, parent.ID, variationID)
		if !ok {
			if logMissing {
				a.record(entry{typ: "Variation", id: variationID, name: "Unknown Variation", multiplier: m, hasMultiplier: true,
					status: synclog.STATUS_ERROR, message: "Could not load variation. Skipping.", source: source})
			}
			continue
		}

		r := cost.Calculate(variation.RegularPrice, m)
		e := entry{typ: "Variation", id: variationID, name: variation.DisplayName(parent.Name), price: variation.RegularPrice,
			multiplier: m, hasMultiplier: true, source: source}
		if !r.Valid() {
			e.status, e.message = synclog.STATUS_ERROR, failureMessage(r.Err)
			a.record(e)
			continue
		}

		costs = append(costs, r.Cost)
		e.cost, e.hasCost = r.Cost, true
		e.status, e.message = synclog.STATUS_SUCCESS, "Cost calculated for variation"
		a.record(e)
	}
	return costs
}

// lookup resolves an item; lookup failures other than not found are logged.
func (a *Adjuster) lookup(ctx context.Context, id int) (*catalog.Item, bool) {
	item, err := a.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrItemNotFound) {
			logging.GetLogger().Errorf("failed to load product #%d: %v", id, err)
		}
		return nil, false
	}
	return item, true
}

func (a *Adjuster) lookupVariation(ctx context.Context, parentID, id int) (*catalog.Item, bool) {
	item, err := a.store.GetVariation(ctx, parentID, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrItemNotFound) {
			logging.GetLogger().Errorf("failed to load variation #%d of #%d: %v", id, parentID, err)
		}
		return nil, false
	}
	return item, true
}

func failureMessage(err error) string {
	if errors.Is(err, cost.ErrInvalidMultiplier) {
		return cost.ErrInvalidMultiplier.Error()
	}
	return "Could not calculate valid cost. Regular price invalid or missing."
}

func typeLabel(item *catalog.Item) string {
	if item.Type == "" {
		return "Unknown"
	}
	return strings.ToUpper(item.Type[:1]) + item.Type[1:]
}
