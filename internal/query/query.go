// Package query filters and orders request lists for the dashboards and
// the CSV export.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

type SortKey string

const (
	SortByUrgency     SortKey = "urgency"
	SortByType        SortKey = "type"
	SortByTime        SortKey = "time"
	SortByRequirement SortKey = "requirement"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// categoryPriority ranks categories by how pressing they are; lower
// sorts first in ascending requirement order.
var categoryPriority = map[models.Category]int{
	models.CategoryMedical:     1,
	models.CategoryRescue:      2,
	models.CategoryWater:       3,
	models.CategoryFood:        4,
	models.CategoryShelter:     5,
	models.CategoryElectricity: 6,
	models.CategoryOther:       7,
}

// Priority returns the requirement priority of a category. Unknown
// categories sort after every known one.
func Priority(c models.Category) int {
	if p, ok := categoryPriority[c]; ok {
		return p
	}
	return len(categoryPriority) + 1
}

type Filter struct {
	Category models.Category
	Status   models.Status
	Search   string
}

type Order struct {
	Key       SortKey
	Direction Direction
}

var DefaultOrder = Order{Key: SortByTime, Direction: Desc}

func ParseOrder(key, dir string) (Order, error) {
	o := DefaultOrder
	if key != "" {
		switch k := SortKey(strings.ToLower(key)); k {
		case SortByUrgency, SortByType, SortByTime, SortByRequirement:
			o.Key = k
		default:
			return Order{}, fmt.Errorf("unknown sort key %q", key)
		}
	}
	if dir != "" {
		switch d := Direction(strings.ToLower(dir)); d {
		case Asc, Desc:
			o.Direction = d
		default:
			return Order{}, fmt.Errorf("unknown sort direction %q", dir)
		}
	}
	return o, nil
}

// Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func (f Filter) Match(r models.Request) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := fold(strings.TrimSpace(f.Search))
	for _, field := range []string{r.Requester, r.Location, r.Description, string(r.Category)} {
		if strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

// Apply returns the requests matching f in the given order. The input
// slice is left untouched.
func Apply(requests []models.Request, f Filter, o Order) []models.Request {
	out := make([]models.Request, 0, len(requests))
	for _, r := range requests {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	Sort(out, o)
	return out
}

// Sort orders requests in place. Equal keys keep their relative order.
func Sort(requests []models.Request, o Order) {
	compare := comparator(o.Key)
	slices.SortStableFunc(requests, func(a, b models.Request) int {
		if o.Direction == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func comparator(key SortKey) func(a, b models.Request) int {
	switch key {
	case SortByUrgency:
		return func(a, b models.Request) int {
			return cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank())
		}
	case SortByType:
		return func(a, b models.Request) int {
			return cmp.Compare(a.Category, b.Category)
		}
	case SortByRequirement:
		// Ascending means most pressing first: lower priority number,
		// then higher urgency.
		return func(a, b models.Request) int {
			if c := cmp.Compare(Priority(a.Category), Priority(b.Category)); c != 0 {
				return c
			}
			return cmp.Compare(b.Urgency.Rank(), a.Urgency.Rank())
		}
	default:
		return func(a, b models.Request) int {
			return a.SubmittedAt.Compare(b.SubmittedAt)
		}
	}
}
