package wooapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"WooCostAdjuster/internal/wc-api-go/client"
	"WooCostAdjuster/internal/wc-api-go/options"
	"WooCostAdjuster/internal/wooapi/models"
	optionsWoo "WooCostAdjuster/internal/wooapi/options"
	"WooCostAdjuster/pkg/logging"
	"github.com/pkg/errors"
)

const perPageMax = 100

type WOOAPI interface {
	ProductGet(ctx context.Context, ID int) (*models.Product, error)
	ProductList(ctx context.Context, opts ...optionsWoo.Option) ([]*models.Product, error)
	ProductListAll(ctx context.Context, opts ...optionsWoo.Option) ([]*models.Product, error)
	ProductUpdate(ctx context.Context, p *models.Product) (*models.Product, error)

	VariationGet(ctx context.Context, parentID, ID int) (*models.Product, error)
	VariationUpdate(ctx context.Context, parentID int, v *models.Product) (*models.Product, error)
}

type wooapi struct {
	api         client.Client
	rps         int
	mu          sync.Mutex
	requestTime time.Time
}

// CheckRPS sleeps until the next request fits into the configured requests per second
func (w *wooapi) CheckRPS() {
	logger := logging.GetLogger()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.rps <= 0 {
		w.requestTime = time.Now()
		return
	}

	TimeNow := time.Now()
	TimeDiff := TimeNow.Sub(w.requestTime)
	TimeRPS := time.Second / time.Duration(w.rps)

	if TimeDiff <= TimeRPS {
		timeSleep := w.requestTime.Add(TimeRPS).Sub(TimeNow)
		logger.Debugf("Over RPS, timeSleep: %s", timeSleep)
		time.Sleep(timeSleep)
	}
	w.requestTime = time.Now()
}

// readResponse decodes a successful body into out or the shop error into *models.ErrorWoo
func readResponse(r *http.Response, okStatus int, out interface{}) error {
	logger := logging.GetLogger()

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Errorf("failed Body.Close()")
		}
	}(r.Body)

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "failed io.ReadAll(r.Body)")
	}
	logger.Debugf("Response %d: %s", r.StatusCode, string(bodyBytes))

	if r.StatusCode != okStatus {
		ErrorWoo := &models.ErrorWoo{StatusCode: r.StatusCode}
		if err := json.Unmarshal(bodyBytes, ErrorWoo); err != nil {
			ErrorWoo.Code = "unexpected_response"
			ErrorWoo.Message = string(bodyBytes)
		}
		return ErrorWoo
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return errors.Wrap(err, "failed json.Unmarshal()")
	}
	return nil
}

func (w *wooapi) ProductGet(ctx context.Context, ID int) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductGet:>Start")
	defer logger.Debug("ProductGet:>End")

	w.CheckRPS()

	endpoint := fmt.Sprintf("products/%d", ID)
	logger.Debugf("Endpoint: %s", endpoint)

	r, err := w.api.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed request to Woo Api, endpoint:%s", endpoint)
	}

	var product models.Product
	if err := readResponse(r, http.StatusOK, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (w *wooapi) ProductList(ctx context.Context, opts ...optionsWoo.Option) ([]*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductList:>Start")
	defer logger.Debug("ProductList:>End")

	w.CheckRPS()

	endpoint := "products"
	logger.Debugf("Endpoint: %s", endpoint)

	params := url.Values{}
	for _, field := range opts {
		Option := new(optionsWoo.OptionStruct)
		field(Option)
		params.Set(Option.Key, Option.Value)
	}

	r, err := w.api.Get(ctx, endpoint, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed request to Woo Api, endpoint:%s", endpoint)
	}
	logger.Debugf("X-WP-TotalPages: %s", r.Header.Get("X-WP-TotalPages"))

	var products []*models.Product
	if err := readResponse(r, http.StatusOK, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductListAll walks the pages until an empty one comes back
func (w *wooapi) ProductListAll(ctx context.Context, opts ...optionsWoo.Option) ([]*models.Product, error) {
	logger := logging.GetLogger()
	logger.Info("Start ProductListAll")
	defer logger.Info("End ProductListAll")

	var products []*models.Product
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageOpts := append(append([]optionsWoo.Option{}, opts...), optionsWoo.PerPage(perPageMax), optionsWoo.Page(page))
		productsTemp, err := w.ProductList(ctx, pageOpts...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed ProductList, PerPage:%d, Page:%d", perPageMax, page)
		}

		if len(productsTemp) == 0 {
			break
		}

		products = append(products, productsTemp...)
		logger.Debugf("Page load:%d", page)
		if len(productsTemp) < perPageMax {
			break
		}
		page++
	}

	return products, nil
}

func (w *wooapi) ProductUpdate(ctx context.Context, p *models.Product) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("ProductUpdate:>Start")
	defer logger.Debug("ProductUpdate:>End")

	if p.ID == 0 {
		return nil, errors.New("product ID is not set")
	}

	w.CheckRPS()

	endpoint := fmt.Sprintf("products/%d", p.ID)
	logger.Debugf("Endpoint: %s", endpoint)

	r, err := w.api.Put(ctx, endpoint, p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed request to Woo Api, endpoint:%s", endpoint)
	}

	var product models.Product
	if err := readResponse(r, http.StatusOK, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (w *wooapi) VariationGet(ctx context.Context, parentID, ID int) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("VariationGet:>Start")
	defer logger.Debug("VariationGet:>End")

	w.CheckRPS()

	endpoint := fmt.Sprintf("products/%d/variations/%d", parentID, ID)
	logger.Debugf("Endpoint: %s", endpoint)

	r, err := w.api.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed request to Woo Api, endpoint:%s", endpoint)
	}

	var variation models.Product
	if err := readResponse(r, http.StatusOK, &variation); err != nil {
		return nil, err
	}
	if variation.Type == "" {
		variation.Type = "variation"
	}
	if variation.ParentId == 0 {
		variation.ParentId = parentID
	}
	return &variation, nil
}

func (w *wooapi) VariationUpdate(ctx context.Context, parentID int, v *models.Product) (*models.Product, error) {
	logger := logging.GetLogger()
	logger.Debug("VariationUpdate:>Start")
	defer logger.Debug("VariationUpdate:>End")

	if parentID == 0 || v.ID == 0 {
		return nil, errors.New("variation ID or parent ID is not set")
	}

	w.CheckRPS()

	endpoint := fmt.Sprintf("products/%d/variations/%d", parentID, v.ID)
	logger.Debugf("Endpoint: %s", endpoint)

	r, err := w.api.Put(ctx, endpoint, v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed request to Woo Api, endpoint:%s", endpoint)
	}

	var variation models.Product
	if err := readResponse(r, http.StatusOK, &variation); err != nil {
		return nil, err
	}
	return &variation, nil
}

func NewAPI(url, key, secret string, rps int) WOOAPI {

	factory := client.Factory{}

	api := factory.NewClient(options.Basic{
		URL:    url,
		Key:    key,
		Secret: secret,
		Options: options.Advanced{
			WPAPI:       true,
			WPAPIPrefix: "/wp-json/",
			Version:     "wc/v3",
		},
	})

	return &wooapi{
		api: api,
		rps: rps,
	}
}
