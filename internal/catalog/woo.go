package catalog

import (
	"context"
	"sort"

	"WooCostAdjuster/internal/wooapi"
	"WooCostAdjuster/internal/wooapi/models"
	optionsWoo "WooCostAdjuster/internal/wooapi/options"
	"WooCostAdjuster/pkg/logging"
	"github.com/pkg/errors"
)

// WooStore is the catalog backed by the WooCommerce REST API.
type WooStore struct {
	api wooapi.WOOAPI
}

func NewWooStore(api wooapi.WOOAPI) *WooStore {
	return &WooStore{api: api}
}

func (s *WooStore) ListActiveIDs(ctx context.Context) ([]int, error) {
	logger := logging.GetLogger()
	logger.Info("Start WooStore.ListActiveIDs")
	defer logger.Info("End WooStore.ListActiveIDs")

	products, err := s.api.ProductListAll(ctx,
		optionsWoo.Status("publish"),
		optionsWoo.Fields("id"),
		optionsWoo.OrderBy("id"),
		optionsWoo.Order("asc"))
	if err != nil {
		return nil, errors.Wrap(err, "failed ProductListAll")
	}

	ids := make([]int, 0, len(products))
	seen := make(map[int]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	sort.Ints(ids)
	logger.Infof("Published products: %d", len(ids))
	return ids, nil
}

func (s *WooStore) Get(ctx context.Context, id int) (*Item, error) {
	p, err := s.api.ProductGet(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, errors.Wrapf(ErrItemNotFound, "id %d", id)
		}
		return nil, errors.Wrapf(err, "failed ProductGet(%d)", id)
	}
	return itemFromProduct(p), nil
}

// GetVariation reads the variation through its parent's variations endpoint.
func (s *WooStore) GetVariation(ctx context.Context, parentID, id int) (*Item, error) {
	v, err := s.api.VariationGet(ctx, parentID, id)
	if err != nil {
		if notFound(err) {
			return nil, errors.Wrapf(ErrItemNotFound, "variation %d of %d", id, parentID)
		}
		return nil, errors.Wrapf(err, "failed VariationGet(%d, %d)", parentID, id)
	}
	return itemFromProduct(v), nil
}

func notFound(err error) bool {
	var wooErr *models.ErrorWoo
	return errors.As(err, &wooErr) && wooErr.NotFound()
}

func (s *WooStore) SetMeta(ctx context.Context, item *Item, values map[string]string) error {
	update := &models.Product{ID: item.ID}
	for _, k := range sortedKeys(values) {
		update.MetaData = append(update.MetaData, models.MetaData{Key: k, Value: values[k]})
	}

	var err error
	if item.IsVariation() && item.ParentID != 0 {
		_, err = s.api.VariationUpdate(ctx, item.ParentID, update)
	} else {
		_, err = s.api.ProductUpdate(ctx, update)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write cost meta on %d", item.ID)
	}
	return nil
}

func itemFromProduct(p *models.Product) *Item {
	item := &Item{
		ID:           p.ID,
		ParentID:     p.ParentId,
		Name:         p.Name,
		Type:         p.Type,
		RegularPrice: p.RegularPrice,
		Variations:   append([]int(nil), p.Variations...),
		Attributes:   make(map[string]string),
		Meta:         make(map[string]string),
	}
	if item.Type == "" {
		item.Type = TypeSimple
	}
	if item.IsVariation() {
		for _, a := range p.Attributes {
			item.Attributes[a.Name] = a.Option
		}
	}
	for _, m := range p.MetaData {
		if v, ok := p.Meta(m.Key); ok {
			item.Meta[m.Key] = v
		}
	}
	return item
}
