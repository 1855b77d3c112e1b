package adjuster

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"WooCostAdjuster/internal/catalog"
	"WooCostAdjuster/internal/database"
	"WooCostAdjuster/internal/database/model/synclog"
	"WooCostAdjuster/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testSettings struct {
	enabled    bool
	multiplier float64
}

func (s testSettings) Enabled() bool       { return s.enabled }
func (s testSettings) Multiplier() float64 { return s.multiplier }

type memoryRecorder struct {
	entries []*synclog.SyncLog
}

func (r *memoryRecorder) Record(e *synclog.SyncLog) {
	r.entries = append(r.entries, e)
}

func (r *memoryRecorder) last() *synclog.SyncLog {
	return r.entries[len(r.entries)-1]
}

func testCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		&catalog.Item{ID: 1, Name: "Mug", Type: catalog.TypeSimple, RegularPrice: "16.50"},
		&catalog.Item{ID: 2, Name: "Poster", Type: catalog.TypeSimple},
		&catalog.Item{ID: 10, Name: "Shirt", Type: catalog.TypeVariable, Variations: []int{11, 12, 13, 14}},
		&catalog.Item{ID: 11, Name: "Shirt - S", Type: catalog.TypeVariation, ParentID: 10, RegularPrice: "33",
			Attributes: map[string]string{"Size": "S"}},
		&catalog.Item{ID: 12, Name: "Shirt - M", Type: catalog.TypeVariation, ParentID: 10, RegularPrice: "16.50",
			Attributes: map[string]string{"Size": "M"}},
		&catalog.Item{ID: 13, Name: "Shirt - L", Type: catalog.TypeVariation, ParentID: 10},
		&catalog.Item{ID: 20, Name: "Empty", Type: catalog.TypeVariable},
		&catalog.Item{ID: 30, Name: "Orphan", Type: catalog.TypeVariation, ParentID: 99, RegularPrice: "3.30"},
	)
}

func newTestAdjuster(enabled bool) (*Adjuster, *memoryRecorder) {
	rec := &memoryRecorder{}
	return New(testCatalog(), testSettings{enabled: enabled, multiplier: 1.65}, rec), rec
}

func TestAdjustProductSimple(t *testing.T) {
	a, rec := newTestAdjuster(true)
	in := Payload{"Name": "Mug", "PurchaseCost": 1.0}

	out := a.AdjustProduct(context.Background(), 1, in)
	assert.Equal(t, Payload{
		"Name":          "Mug",
		"PurchaseCost":  10.0,
		"UnitPrice":     10.0,
		"qb_p_cost":     10.0,
		"_product_cost": 10.0,
	}, out)
	assert.Equal(t, 1.0, in["PurchaseCost"])

	e := rec.last()
	assert.Equal(t, "Simple", e.ProductType)
	assert.Equal(t, "10.00", e.Cost)
	assert.Equal(t, "16.50", e.RegularPrice)
	assert.Equal(t, "1.6500", e.Multiplier)
	assert.Equal(t, synclog.STATUS_SUCCESS, e.Status)
	assert.Equal(t, synclog.SOURCE_DIRECT, e.Source)
}

func TestAdjustProductFailuresKeepPayload(t *testing.T) {
	a, rec := newTestAdjuster(true)
	in := Payload{"UnitPrice": 5.0}

	assert.Equal(t, in, a.AdjustProduct(context.Background(), 2, in))
	assert.Equal(t, synclog.STATUS_ERROR, rec.last().Status)
	assert.Equal(t, "N/A", rec.last().Cost)

	assert.Equal(t, in, a.AdjustProduct(context.Background(), 404, in))
	assert.Equal(t, "Unknown Product", rec.last().ProductName)
}

func TestAdjustProductDisabled(t *testing.T) {
	a, rec := newTestAdjuster(false)
	in := Payload{"UnitPrice": 5.0}

	assert.Equal(t, in, a.AdjustProduct(context.Background(), 1, in))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, synclog.STATUS_INFO, rec.entries[0].Status)
}

func TestAdjustProductVariableAverage(t *testing.T) {
	a, rec := newTestAdjuster(true)

	out := a.AdjustProduct(context.Background(), 10, Payload{"PurchaseCost": 0.0, "_wc_cog_cost": 1.0})
	// (20.00 + 10.00) / 2
	assert.Equal(t, 15.0, out["UnitPrice"])
	assert.Equal(t, 15.0, out["_product_cost"])
	assert.Equal(t, 15.0, out["PurchaseCost"])
	assert.Equal(t, 1.0, out["_wc_cog_cost"])
	assert.NotContains(t, out, "qb_p_cost")

	e := rec.last()
	assert.Equal(t, "Using average cost (based on 2 variations)", e.Message)
	assert.Equal(t, synclog.SOURCE_VARIABLE, e.Source)

	var names []string
	for _, entry := range rec.entries {
		if entry.ProductType == "Variation" {
			names = append(names, entry.ProductName)
		}
	}
	assert.Equal(t, []string{"Shirt - Size: S", "Shirt - Size: M", "Shirt - Shirt - L", "Unknown Variation"}, names)
}

func TestAdjustProductVariableWithoutVariations(t *testing.T) {
	a, rec := newTestAdjuster(true)

	in := Payload{"UnitPrice": 5.0}
	out := a.AdjustProduct(context.Background(), 20, in)
	assert.Equal(t, in, out)
	assert.Equal(t, synclog.STATUS_ERROR, rec.last().Status)
}

func TestAdjustVariation(t *testing.T) {
	a, rec := newTestAdjuster(true)

	out := a.AdjustVariation(context.Background(), 11, Payload{})
	assert.Equal(t, Payload{
		"UnitPrice":     20.0,
		"qb_p_cost":     20.0,
		"_product_cost": 20.0,
		"_wc_cog_cost":  20.0,
	}, out)
	assert.Equal(t, "Shirt - Size: S", rec.last().ProductName)
	assert.Equal(t, synclog.SOURCE_VARIATION, rec.last().Source)

	in := Payload{"UnitPrice": 1.0}
	assert.Equal(t, in, a.AdjustVariation(context.Background(), 13, in))
	assert.Equal(t, synclog.STATUS_ERROR, rec.last().Status)
}

func TestAdjustVariationFallsBackToProduct(t *testing.T) {
	a, rec := newTestAdjuster(true)

	out := a.AdjustVariation(context.Background(), 1, Payload{})
	assert.Equal(t, 10.0, out["UnitPrice"])
	assert.Equal(t, synclog.SOURCE_DIRECT, rec.last().Source)

	out = a.AdjustVariation(context.Background(), 30, Payload{})
	assert.Equal(t, 2.0, out["UnitPrice"])
	assert.Equal(t, "Could not find parent product. Processing as standalone.", rec.entries[len(rec.entries)-2].Message)
}

func TestAdjustBulkPush(t *testing.T) {
	a, rec := newTestAdjuster(true)

	out := a.AdjustBulkPush(context.Background(), 1, Payload{})
	assert.Equal(t, Payload{
		"PurchaseCost":  10.0,
		"UnitPrice":     10.0,
		"_product_cost": 10.0,
		"_wc_cog_cost":  10.0,
	}, out)
	assert.Equal(t, synclog.SOURCE_BULK, rec.last().Source)

	out = a.AdjustBulkPush(context.Background(), 10, Payload{})
	assert.Equal(t, 15.0, out["PurchaseCost"])
	assert.Equal(t, 15.0, out["_wc_cog_cost"])

	in := Payload{"UnitPrice": 1.0}
	assert.Equal(t, in, a.AdjustBulkPush(context.Background(), 20, in))
	assert.Equal(t, synclog.STATUS_WARNING, rec.last().Status)
}

func TestDBRecorder(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "adjuster.db"))
	require.NoError(t, err)
	defer db.Close()

	a := New(testCatalog(), testSettings{enabled: true, multiplier: 1.65}, NewDBRecorder(db, 3))
	for i := 0; i < 3; i++ {
		a.AdjustProduct(context.Background(), 10, Payload{})
	}

	logs, err := synclog.List(db, 10, "")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Using average cost (based on 2 variations)", logs[0].Message)
	assert.Equal(t, "15.00", logs[0].Cost)
}
