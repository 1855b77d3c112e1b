// Package catalog is the product side of the cost adjuster: it lists the
// published items, resolves them by ID and writes cost meta values.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	TypeSimple    = "simple"
	TypeVariable  = "variable"
	TypeVariation = "variation"
)

var ErrItemNotFound = errors.New("item not found")

type Item struct {
	ID           int
	ParentID     int
	Name         string
	Type         string
	RegularPrice string
	Variations   []int
	Attributes   map[string]string
	Meta         map[string]string
}

func (i *Item) IsVariable() bool {
	return i.Type == TypeVariable
}

func (i *Item) IsVariation() bool {
	return i.Type == TypeVariation
}

// DisplayName is the name used in logs; variations get their attributes appended.
func (i *Item) DisplayName(parentName string) string {
	if !i.IsVariation() || parentName == "" {
		if i.Name == "" {
			return fmt.Sprintf("Product #%d", i.ID)
		}
		return i.Name
	}
	var attrs []string
	for _, k := range sortedKeys(i.Attributes) {
		if v := i.Attributes[k]; v != "" {
			attrs = append(attrs, k+": "+v)
		}
	}
	if len(attrs) == 0 {
		if i.Name != "" {
			return parentName + " - " + i.Name
		}
		return parentName
	}
	return parentName + " - " + strings.Join(attrs, ", ")
}

type Store interface {
	// ListActiveIDs returns the IDs of all published top level items in catalog order.
	ListActiveIDs(ctx context.Context) ([]int, error)
	// Get resolves an item or variation, ErrItemNotFound when it does not exist.
	Get(ctx context.Context, id int) (*Item, error)
	// GetVariation resolves a variation of parentID, ErrItemNotFound when it
	// does not exist or belongs to another parent.
	GetVariation(ctx context.Context, parentID, id int) (*Item, error)
	// SetMeta writes the given meta values on the item.
	SetMeta(ctx context.Context, item *Item, values map[string]string) error
}
