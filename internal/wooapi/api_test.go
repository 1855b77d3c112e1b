package wooapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"WooCostAdjuster/internal/wooapi/models"
	optionsWoo "WooCostAdjuster/internal/wooapi/options"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, h http.HandlerFunc) WOOAPI {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPI(srv.URL, "ck", "cs", 0)
}

func TestProductGet(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/products/10":
			_, _ = w.Write([]byte(`{"id":10,"name":"Mug","type":"simple","regular_price":"16.50",
				"meta_data":[{"id":1,"key":"_qb_p_cost","value":"9.00"},{"id":2,"key":"_wc_cog_cost","value":8.5}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID.","data":{"status":404}}`))
		}
	})

	p, err := api.ProductGet(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "16.50", p.RegularPrice)

	v, ok := p.Meta("_qb_p_cost")
	assert.True(t, ok)
	assert.Equal(t, "9.00", v)
	v, ok = p.Meta("_wc_cog_cost")
	assert.True(t, ok)
	assert.Equal(t, "8.5", v)
	_, ok = p.Meta("_purchase_cost")
	assert.False(t, ok)

	_, err = api.ProductGet(context.Background(), 11)
	require.Error(t, err)
	var wooErr *models.ErrorWoo
	require.True(t, errors.As(err, &wooErr))
	assert.True(t, wooErr.NotFound())
	assert.Equal(t, http.StatusNotFound, wooErr.StatusCode)
}

func TestProductListAllPages(t *testing.T) {
	const total = 230
	var pages []string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		pages = append(pages, q.Get("page"))
		assert.Equal(t, "publish", q.Get("status"))
		assert.Equal(t, "100", q.Get("per_page"))

		page, _ := strconv.Atoi(q.Get("page"))
		var out []models.Product
		for id := (page-1)*100 + 1; id <= page*100 && id <= total; id++ {
			out = append(out, models.Product{ID: id})
		}
		if out == nil {
			out = []models.Product{}
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	products, err := api.ProductListAll(context.Background(), optionsWoo.Status("publish"), optionsWoo.Fields("id"))
	require.NoError(t, err)
	assert.Len(t, products, total)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, total, products[total-1].ID)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
}

func TestVariationUpdate(t *testing.T) {
	var gotMethod, gotPath string
	var got models.Product
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write(body)
	})

	_, err := api.VariationUpdate(context.Background(), 5, &models.Product{
		ID:       6,
		MetaData: []models.MetaData{{Key: "_qb_p_cost", Value: "10.00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/wp-json/wc/v3/products/5/variations/6", gotPath)
	require.Len(t, got.MetaData, 1)
	assert.Equal(t, "10.00", fmt.Sprint(got.MetaData[0].Value))

	_, err = api.VariationUpdate(context.Background(), 0, &models.Product{ID: 6})
	assert.Error(t, err)
}
