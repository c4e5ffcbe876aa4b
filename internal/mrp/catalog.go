package mrp

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
)

// PlanningAttributes are the per-part inputs to lot sizing and
// lead-time offsetting.
type PlanningAttributes struct {
	LeadTimeDays int
	EOQ          decimal.Decimal
	PanSize      decimal.Decimal
	ShrinkFactor decimal.Decimal
}

// Catalog resolves planning attributes per part. It is read-only after
// construction; parts missing from the item master resolve to zeroes.
type Catalog struct {
	attrs map[string]PlanningAttributes
}

// BuildCatalog resolves attributes from the item master and preferred
// supplier records. A preferred supplier lead time wins over the item
// master when it is positive.
func BuildCatalog(items []models.Item, suppliers []models.SupplierItem) *Catalog {
	attrs := make(map[string]PlanningAttributes, len(items))
	for _, item := range items {
		attrs[item.Part] = PlanningAttributes{
			LeadTimeDays: item.LeadTimeDays,
			EOQ:          item.EOQ,
			PanSize:      item.PanSize,
			ShrinkFactor: item.ShrinkFactor,
		}
	}
	for _, sup := range suppliers {
		if !sup.Preferred || sup.LeadTimeDays <= 0 {
			continue
		}
		entry, ok := attrs[sup.Part]
		if !ok {
			entry = PlanningAttributes{}
		}
		entry.LeadTimeDays = sup.LeadTimeDays
		attrs[sup.Part] = entry
	}
	return &Catalog{attrs: attrs}
}

// Lookup returns the attributes for a part; missing parts pass through
// with zero lead time and no lot sizing.
func (c *Catalog) Lookup(part string) PlanningAttributes {
	if c == nil {
		return PlanningAttributes{}
	}
	return c.attrs[part]
}
