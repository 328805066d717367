package voucher

import "storefront/internal/model"

// mapCatalog implements Catalog using a map for O(1) lookups.
type mapCatalog struct {
	byCode map[string]int
	items  []model.Voucher
}

// NewCatalog builds a catalog from vouchers. Later duplicates of a code are dropped.
func NewCatalog(vouchers ...model.Voucher) Catalog {
	c := newMapCatalog(len(vouchers))
	for _, v := range vouchers {
		c.Add(v)
	}
	return c
}

func newMapCatalog(capacity int) *mapCatalog {
	return &mapCatalog{
		byCode: make(map[string]int, capacity),
		items:  make([]model.Voucher, 0, capacity),
	}
}

func (c *mapCatalog) Get(code string) (model.Voucher, bool) {
	i, ok := c.byCode[NormalizeCode(code)]
	if !ok {
		return model.Voucher{}, false
	}
	return c.items[i], true
}

func (c *mapCatalog) Contains(code string) bool {
	_, ok := c.byCode[NormalizeCode(code)]
	return ok
}

func (c *mapCatalog) All() []model.Voucher {
	out := make([]model.Voucher, len(c.items))
	copy(out, c.items)
	return out
}

func (c *mapCatalog) Size() int {
	return len(c.items)
}

// Add inserts a voucher. It returns false when the code is already present;
// the first occurrence wins.
func (c *mapCatalog) Add(v model.Voucher) bool {
	code := NormalizeCode(v.Code)
	if _, exists := c.byCode[code]; exists {
		return false
	}
	v.Code = code
	c.byCode[code] = len(c.items)
	c.items = append(c.items, v)
	return true
}
