package adjuster

import (
	"context"
	"fmt"

	"WooCostAdjuster/internal/cost"
	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
)

// AdjustBulkPush handles a payload of the accounting service's bulk push.
// Unlike AdjustProduct it always writes PurchaseCost and the cost of goods field.
func (a *Adjuster) AdjustBulkPush(ctx context.Context, id int, payload Payload) Payload {
	logger := logging.GetLogger()
	logger.Debugf("Start AdjustBulkPush #%d", id)
	defer logger.Debugf("End AdjustBulkPush #%d", id)

	if !a.settings.Enabled() {
		a.record(entry{typ: "Unknown", id: id, name: "Unknown Product", status: synclog.STATUS_INFO,
			message: "Cost adjustment disabled. Skipping bulk sync.", source: synclog.SOURCE_BULK})
		return payload
	}

	item, ok := a.lookup(ctx, id)
	if !ok {
		a.record(entry{typ: "Unknown", id: id, name: "Unknown Product", status: synclog.STATUS_ERROR,
			message: "Could not load product during bulk sync. Skipping.", source: synclog.SOURCE_BULK})
		return payload
	}

	m := a.settings.Multiplier()
	base := entry{typ: typeLabel(item), id: id, name: item.DisplayName(""), multiplier: m, hasMultiplier: true, source: synclog.SOURCE_BULK}

	var value float64
	if item.IsVariable() {
		if len(item.Variations) == 0 {
			e := base
			e.status, e.message = synclog.STATUS_WARNING, "No variations found for variable product"
			a.record(e)
			return payload
		}

		costs := a.variationCosts(ctx, item, m, synclog.SOURCE_BULK, false)
		avg, ok := cost.Average(costs)
		if !ok {
			e := base
			e.status, e.message = synclog.STATUS_ERROR, "Could not calculate valid cost for any variations"
			a.record(e)
			return payload
		}
		value = avg

		e := base
		e.cost, e.hasCost = avg, true
		e.status, e.message = synclog.STATUS_SUCCESS, fmt.Sprintf("Set average cost for variable product (based on %d variations)", len(costs))
		a.record(e)
	} else {
		r := cost.Calculate(item.RegularPrice, m)
		e := base
		e.price = item.RegularPrice
		if !r.Valid() {
			e.status, e.message = synclog.STATUS_ERROR, failureMessage(r.Err)
			a.record(e)
			return payload
		}
		value = r.Cost

		e.cost, e.hasCost = r.Cost, true
		e.status, e.message = synclog.STATUS_SUCCESS, "Calculated cost during bulk sync"
		a.record(e)
	}

	out := payload.clone()
	out[cost.FieldPurchaseCost] = value
	out[cost.FieldUnitPrice] = value
	out[cost.FieldProductCost] = value
	out[cost.FieldCostOfGoods] = value
	return out
}
