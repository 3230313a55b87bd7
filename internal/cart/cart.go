package cart

import (
	"iter"
	"maps"
	"slices"
	"strconv"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is one operator's pending sale: product id to quantity. Every
// stored quantity is positive.
type Cart struct {
	OwnerID uuid.UUID
	items   map[uuid.UUID]int
}

// New returns an empty cart for owner.
func New(owner uuid.UUID) *Cart {
	return &Cart{OwnerID: owner, items: map[uuid.UUID]int{}}
}

// FromFields rebuilds a cart from its stored hash. Malformed or
// non-positive entries are skipped.
func FromFields(owner uuid.UUID, fields map[string]string) *Cart {
	c := New(owner)
	for rawID, rawQty := range fields {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(rawQty)
		if err != nil || qty <= 0 {
			continue
		}
		c.Set(id, qty)
	}
	return c
}

// Set stores qty for productID; qty <= 0 removes the entry.
func (c *Cart) Set(productID uuid.UUID, qty int) {
	if qty <= 0 {
		delete(c.items, productID)
		return
	}
	c.items[productID] = qty
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ProductIDs lists the cart's products in a stable order.
func (c *Cart) ProductIDs() []uuid.UUID {
	return slices.SortedFunc(maps.Keys(c.items), func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
}

// Entries yields product id and quantity in ProductIDs order.
func (c *Cart) Entries() iter.Seq2[uuid.UUID, int] {
	return func(yield func(uuid.UUID, int) bool) {
		for _, id := range c.ProductIDs() {
			if !yield(id, c.items[id]) {
				return
			}
		}
	}
}

// Line is a cart entry joined against the current catalog.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"qty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Lines lazily joins the cart with products. Entries whose product no
// longer exists are dropped.
func (c *Cart) Lines(products map[uuid.UUID]models.Product) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for id, qty := range c.Entries() {
			product, ok := products[id]
			if !ok {
				continue
			}
			line := Line{
				ProductID: id,
				Name:      product.Name,
				Barcode:   product.Barcode,
				UnitPrice: product.Price,
				Stock:     product.Stock,
				Quantity:  qty,
				LineTotal: product.Price.Mul(decimal.NewFromInt(int64(qty))),
			}
			if !yield(line) {
				return
			}
		}
	}
}
