package mrp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// netter executes the time-phased netting pass strictly top-down by
// low-level code: allocate supplies against requirements, lot-size the
// shortfalls into planned orders, and explode those orders into
// dependent requirements for child parts. Every active parent of a part
// carries a smaller code, so finishing each level before the next
// guarantees a part sees its full demand before it is netted.
type netter struct {
	opts    RunOptions
	catalog *Catalog
	levels  map[string]int

	// active BOM edges per parent; explosion input only
	children map[string][]models.BomEdge

	reqs map[string][]*models.MrpRequirement
	sups map[string][]*models.MrpSupply

	planned   []models.MrpPlannedOrder
	processed map[string]bool

	gross map[string]decimal.Decimal
	sched map[string]decimal.Decimal
	net   map[string]decimal.Decimal
}

// newNetter builds a netter over the working sets. Only edges active on
// the run date explode; the level table still covers every edge ever
// defined.
func newNetter(opts RunOptions, catalog *Catalog, levels map[string]int, edges []models.BomEdge, today time.Time) *netter {
	children := make(map[string][]models.BomEdge)
	for _, e := range edges {
		if e.ActiveOn(today) {
			children[e.ParentPart] = append(children[e.ParentPart], e)
		}
	}
	for parent := range children {
		edges := children[parent]
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].ChildPart < edges[j].ChildPart
		})
	}
	return &netter{
		opts:      opts,
		catalog:   catalog,
		levels:    levels,
		children:  children,
		reqs:      make(map[string][]*models.MrpRequirement),
		sups:      make(map[string][]*models.MrpSupply),
		processed: make(map[string]bool),
		gross:     make(map[string]decimal.Decimal),
		sched:     make(map[string]decimal.Decimal),
		net:       make(map[string]decimal.Decimal),
	}
}

// addRequirement registers demand for a part. Dependent demand for a part
// that already finished netting means the level order is broken.
func (n *netter) addRequirement(req *models.MrpRequirement) error {
	if n.processed[req.Part] {
		return apperrors.Invariant(fmt.Sprintf("dependent demand injected for already-netted part %q", req.Part))
	}
	if _, ok := n.levels[req.Part]; !ok {
		n.levels[req.Part] = 0
	}
	n.reqs[req.Part] = append(n.reqs[req.Part], req)
	n.gross[req.Part] = n.gross[req.Part].Add(req.OriginalQty)
	return nil
}

// addSupply registers a scheduled receipt for a part.
func (n *netter) addSupply(sup *models.MrpSupply) {
	if _, ok := n.levels[sup.Part]; !ok {
		n.levels[sup.Part] = 0
	}
	n.sups[sup.Part] = append(n.sups[sup.Part], sup)
	n.sched[sup.Part] = n.sched[sup.Part].Add(sup.SupplyQty)
}

// run nets every part exactly once, top assemblies first, part ids
// ascending within a level. The context is checked between levels and
// between parts.
func (n *netter) run(ctx context.Context) error {
	grouped, maxLevel := partsByLevel(n.levels)
	for llc := 0; llc <= maxLevel; llc++ {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		for _, part := range grouped[llc] {
			if err := checkCanceled(ctx); err != nil {
				return err
			}
			if err := n.netPart(part); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *netter) netPart(part string) error {
	if n.processed[part] {
		return apperrors.Invariant(fmt.Sprintf("part %q netted twice in one run", part))
	}
	n.processed[part] = true

	reqs := n.reqs[part]
	sups := n.sups[part]
	if len(reqs) == 0 && len(sups) == 0 {
		return nil
	}

	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].DateRequired.Before(reqs[j].DateRequired)
	})
	sort.SliceStable(sups, func(i, j int) bool {
		return sups[i].DueDate.Before(sups[j].DueDate)
	})

	n.allocate(reqs, sups)
	return n.lotSizeAndExplode(part, reqs)
}

// allocate walks requirements and supplies in date order, consuming the
// smaller of the two at each step. A supply due more than leewayDays
// after the requirement it covers gets an advisory reschedule: MrpDate
// moves to the requirement date, once per supply. The physical due date
// is never changed.
func (n *netter) allocate(reqs []*models.MrpRequirement, sups []*models.MrpSupply) {
	r, s := 0, 0
	for r < len(reqs) && s < len(sups) {
		req, sup := reqs[r], sups[s]

		if sup.DueDate.After(offsetDays(req.DateRequired, n.opts.LeewayDays)) && sup.MrpDate.Equal(sup.DueDate) {
			sup.MrpDate = req.DateRequired
			sup.UpdateFlag = true
		}

		switch req.Quantity.Cmp(sup.SupplyQty) {
		case 1:
			req.Quantity = req.Quantity.Sub(sup.SupplyQty)
			sup.SupplyQty = decimal.Zero
			s++
		case -1:
			sup.SupplyQty = sup.SupplyQty.Sub(req.Quantity)
			req.Quantity = decimal.Zero
			r++
		default:
			req.Quantity = decimal.Zero
			sup.SupplyQty = decimal.Zero
			r++
			s++
		}
	}
}

// lotSizeAndExplode turns the unmet residuals into planned orders. The
// carry tracks excess quantity that EOQ rounding already produced for
// this part; it never survives past the last requirement of the part.
func (n *netter) lotSizeAndExplode(part string, reqs []*models.MrpRequirement) error {
	attrs := n.catalog.Lookup(part)
	carry := decimal.Zero

	for _, req := range reqs {
		if req.Quantity.Sign() <= 0 {
			continue
		}
		n.net[part] = n.net[part].Add(req.Quantity)

		needed := req.Quantity
		if n.opts.UseShrinkage && attrs.ShrinkFactor.Sign() > 0 && attrs.ShrinkFactor.LessThan(oneHundred) {
			needed = needed.Mul(oneHundred).Div(oneHundred.Sub(attrs.ShrinkFactor)).Round(2)
		}

		if carry.GreaterThanOrEqual(needed) {
			carry = carry.Sub(needed)
			continue
		}
		planQty := needed.Sub(carry)
		carry = decimal.Zero

		if n.opts.UseEOQ && attrs.EOQ.GreaterThan(planQty) {
			carry = attrs.EOQ.Sub(planQty)
			planQty = attrs.EOQ
		}
		if n.opts.UsePanSize && attrs.PanSize.Sign() > 0 {
			planQty = planQty.Div(attrs.PanSize).Ceil().Mul(attrs.PanSize)
		}

		dueDate := offsetDays(req.DateRequired, -attrs.LeadTimeDays)
		n.planned = append(n.planned, models.MrpPlannedOrder{
			RunID:      req.RunID,
			Part:       part,
			DueDate:    dueDate,
			Quantity:   planQty,
			DemandType: req.DemandType,
			OrderNo:    req.OrderNo,
		})

		if err := n.explode(part, req, planQty, dueDate); err != nil {
			return err
		}
	}
	return nil
}

// explode injects dependent demand for every active child of the part,
// due when the parent order starts. The child's own lead time is NOT
// applied here; it offsets the child's planned orders when the child is
// netted, so applying it to the requirement date too would double-count
// it at every BOM level.
func (n *netter) explode(part string, req *models.MrpRequirement, planQty decimal.Decimal, dueDate time.Time) error {
	for _, edge := range n.children[part] {
		if n.levels[edge.ChildPart] <= n.levels[part] {
			return apperrors.Invariant(fmt.Sprintf("active edge %s→%s does not descend a level", part, edge.ChildPart))
		}
		childQty := planQty.Mul(edge.QuantityPer)
		childDate := dueDate
		if err := n.addRequirement(&models.MrpRequirement{
			RunID:         req.RunID,
			Part:          edge.ChildPart,
			DateRequired:  childDate,
			Quantity:      childQty,
			OriginalQty:   childQty,
			DemandType:    req.DemandType,
			OrderNo:       req.OrderNo,
			DirectDemand:  false,
			WhereRequired: part,
		}); err != nil {
			return err
		}
	}
	return nil
}

// results flattens the final working sets in deterministic order.
func (n *netter) results() ([]models.MrpRequirement, []models.MrpSupply, []models.MrpPlannedOrder) {
	var reqs []models.MrpRequirement
	for _, part := range sortedKeys(n.reqs) {
		for _, req := range n.reqs[part] {
			reqs = append(reqs, *req)
		}
	}
	var sups []models.MrpSupply
	for _, part := range sortedKeys(n.sups) {
		for _, sup := range n.sups[part] {
			sups = append(sups, *sup)
		}
	}
	return reqs, sups, n.planned
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkCanceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return apperrors.Canceled(ctx.Err())
	default:
		return nil
	}
}
