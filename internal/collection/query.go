// SPDX-License-Identifier: AGPL-3.0-or-later
package collection

import (
	"context"
	"time"

	"github.com/cyberpath-hq/sentinel/internal/document"
	"github.com/cyberpath-hq/sentinel/internal/filter"
)

// Query describes a filtered, sorted, paginated, projected read over a
// collection.
type Query struct {
	Filter     filter.Filter // nil matches every document
	Sort       *filter.SortSpec
	Offset     int
	Limit      int // 0 means unbounded
	Project    []string
	ExactCount bool // force total_count even without a Sort
}

// Result is the outcome of Collection.Query: the emitted documents'
// projected data (alongside their envelope), an optional total match
// count, and wall-clock execution time.
type Result struct {
	Documents     []Item
	TotalCount    *int // nil unless Sort or ExactCount was requested
	ExecutionTime time.Duration
}

// Item pairs a matched document's envelope with its projected data.
type Item struct {
	Document *document.Document
	Data     any
}

// Query runs q against the collection: enumerate, verify, filter,
// (optionally) sort, paginate, project. Without a Sort the result stream
// is produced and paginated lazily in directory-enumeration order;
// TotalCount stays nil to preserve that streaming property unless
// ExactCount was requested.
func (c *Collection) Query(ctx context.Context, q Query) (Result, error) {
	start := time.Now()

	needsFullCollect := q.Sort != nil || q.ExactCount

	var matched []*document.Document
	var emitted []Item
	skipped := 0
	taken := 0

	emit := func(d *document.Document) error {
		if q.Filter != nil && !q.Filter.Eval(dataView(d)) {
			return nil
		}

		if needsFullCollect {
			matched = append(matched, d)
			return nil
		}

		if skipped < q.Offset {
			skipped++
			return nil
		}
		if q.Limit > 0 && taken >= q.Limit {
			return errStopEnumeration
		}
		emitted = append(emitted, Item{Document: d, Data: filter.Project(dataView(d), q.Project)})
		taken++
		return nil
	}

	err := c.All(ctx, emit)
	if err != nil && err != errStopEnumeration {
		return Result{}, err
	}

	if !needsFullCollect {
		return Result{Documents: emitted, ExecutionTime: time.Since(start)}, nil
	}

	filter.Sort(matched, sortSpecOrDefault(q.Sort), dataView)

	total := len(matched)
	page := matched
	if q.Offset > 0 {
		if q.Offset >= len(page) {
			page = nil
		} else {
			page = page[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(page) {
		page = page[:q.Limit]
	}

	items := make([]Item, len(page))
	for i, d := range page {
		items[i] = Item{Document: d, Data: filter.Project(dataView(d), q.Project)}
	}

	return Result{
		Documents:     items,
		TotalCount:    &total,
		ExecutionTime: time.Since(start),
	}, nil
}

// errStopEnumeration is a private sentinel used only to unwind All's
// callback loop once a bounded, unsorted query has filled its page; it
// never escapes Query.
var errStopEnumeration = errStop{}

type errStop struct{}

func (errStop) Error() string { return "enumeration satisfied" }

func dataView(d *document.Document) any { return d.Data }

// sortSpecOrDefault lets Query call filter.Sort unconditionally once
// needsFullCollect is true, covering the ExactCount-without-Sort case
// with a no-op ordering (every Compare returns 0, so the stable sort
// keeps enumeration order).
func sortSpecOrDefault(spec *filter.SortSpec) filter.SortSpec {
	if spec != nil {
		return *spec
	}
	return filter.SortSpec{Path: ""}
}

// AggregationKind names the fold applied over a filtered document
// stream's numeric path.
type AggregationKind int

const (
	AggCount AggregationKind = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

// Aggregate evaluates f (nil matches everything) against every live
// document and folds the value at path using kind. Sum and Avg coerce a
// missing or non-numeric value to zero (zero-weighted for Avg, i.e. it
// still counts toward the denominator), so they always return a float64.
// Min and Max fold with filter.Compare, the same cross-type total order
// the sort and filter paths use, and return the extreme value itself
// (nil, bool, float64, string, []any, or map[string]any) rather than
// coercing it to a number; nil is returned if no document matched.
func (c *Collection) Aggregate(ctx context.Context, f filter.Filter, kind AggregationKind, path string) (any, error) {
	var (
		count   int
		sum     float64
		haveMin bool
		min     any
		haveMax bool
		max     any
	)

	err := c.All(ctx, func(d *document.Document) error {
		if f != nil && !f.Eval(d.Data) {
			return nil
		}
		count++

		if kind == AggCount {
			return nil
		}

		v, _ := filter.Resolve(d.Data, path)

		switch kind {
		case AggSum, AggAvg:
			n, _ := v.(float64)
			sum += n
		case AggMin:
			if !haveMin || filter.Compare(v, min) < 0 {
				min, haveMin = v, true
			}
		case AggMax:
			if !haveMax || filter.Compare(v, max) > 0 {
				max, haveMax = v, true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch kind {
	case AggCount:
		return float64(count), nil
	case AggSum:
		return sum, nil
	case AggAvg:
		if count == 0 {
			return float64(0), nil
		}
		return sum / float64(count), nil
	case AggMin:
		if !haveMin {
			return nil, nil
		}
		return min, nil
	case AggMax:
		if !haveMax {
			return nil, nil
		}
		return max, nil
	default:
		return nil, nil
	}
}
