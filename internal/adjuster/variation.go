package adjuster

import (
	"context"

	"WooCostAdjuster/internal/cost"
	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
)

// AdjustVariation handles the payload of a single variation. Items that are
// not variations, or whose parent is gone, go through AdjustProduct.
func (a *Adjuster) AdjustVariation(ctx context.Context, id int, payload Payload) Payload {
	logger := logging.GetLogger()
	logger.Debugf("Start AdjustVariation #%d", id)
	defer logger.Debugf("End AdjustVariation #%d", id)

	if !a.settings.Enabled() {
		a.record(entry{typ: "Unknown", id: id, name: "Unknown Variation", status: synclog.STATUS_INFO,
			message: "Cost adjustment disabled. Skipping.", source: synclog.SOURCE_VARIATION})
		return payload
	}

	variation, ok := a.lookup(ctx, id)
	if !ok {
		a.record(entry{typ: "Unknown", id: id, name: "Unknown Variation", status: synclog.STATUS_ERROR,
			message: "Variation not found. Skipping cost adjustment.", source: synclog.SOURCE_VARIATION})
		return payload
	}

	if !variation.IsVariation() {
		a.record(entry{typ: variation.Type, id: id, name: variation.DisplayName(""), status: synclog.STATUS_WARNING,
			message: "Product is not a variation. Using standard product handler.", source: synclog.SOURCE_VARIATION})
		return a.AdjustProduct(ctx, id, payload)
	}

	parent, ok := a.lookup(ctx, variation.ParentID)
	if variation.ParentID == 0 || !ok {
		a.record(entry{typ: "Variation", id: id, name: variation.DisplayName(""), status: synclog.STATUS_WARNING,
			message: "Could not find parent product. Processing as standalone.", source: synclog.SOURCE_VARIATION})
		return a.AdjustProduct(ctx, id, payload)
	}

	m := a.settings.Multiplier()
	r := cost.Calculate(variation.RegularPrice, m)
	e := entry{typ: "Variation", id: id, name: variation.DisplayName(parent.Name), price: variation.RegularPrice,
		multiplier: m, hasMultiplier: true, source: synclog.SOURCE_VARIATION}
	if !r.Valid() {
		e.status, e.message = synclog.STATUS_ERROR, failureMessage(r.Err)
		a.record(e)
		return payload
	}

	e.cost, e.hasCost = r.Cost, true
	e.status, e.message = synclog.STATUS_SUCCESS, "Cost calculated for variation"
	a.record(e)

	out := payload.clone()
	out[cost.FieldUnitPrice] = r.Cost
	out[cost.FieldQuickBooksCost] = r.Cost
	out[cost.FieldProductCost] = r.Cost
	out[cost.FieldCostOfGoods] = r.Cost
	if out.has(cost.FieldPurchaseCost) {
		out[cost.FieldPurchaseCost] = r.Cost
	}
	return out
}
