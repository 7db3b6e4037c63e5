package graph

import (
	"strings"
	"unicode"

	"github.com/sqlinsight/sqlinsight/pkg/catalog"
)

// health computes the three 0-100 sub-scores over the whole table set and
// their unweighted mean. An empty catalog scores a flat 100: there is nothing
// wrong with no tables.
func (e *Engine) health() Health {
	tables := e.cat.Tables
	if len(tables) == 0 {
		return Health{Integrity: 100, Normalization: 100, Performance: 100, Overall: 100}
	}

	withPK := 0
	withFK := 0
	var norm, perf float64

	for i := range tables {
		t := &tables[i]
		if t.HasPrimaryKey() {
			withPK++
		}
		if e.hasAnyForeignKey(t) {
			withFK++
		}

		// Normalization: 100 minus 20 per repeating column group, minus 10
		// for wide tables and another 10 for very wide ones.
		n := 100.0
		n -= 20 * float64(len(repeatingGroups(t)))
		if len(t.Columns) > 15 {
			n -= 10
		}
		if len(t.Columns) > 25 {
			n -= 10
		}
		norm += clampScore(n)

		// Performance: 100 minus 15 for >20 columns, minus 25 for a missing
		// primary key.
		p := 100.0
		if len(t.Columns) > 20 {
			p -= 15
		}
		if !t.HasPrimaryKey() {
			p -= 25
		}
		perf += clampScore(p)
	}

	n := float64(len(tables))
	h := Health{
		Integrity:     50*(float64(withPK)/n) + 50*min(1, float64(withFK)/n),
		Normalization: norm / n,
		Performance:   perf / n,
	}
	h.Overall = (h.Integrity + h.Normalization + h.Performance) / 3
	return h
}

// hasAnyForeignKey counts declared and inferred references alike; an inferred
// edge still means the table participates in the relationship web.
func (e *Engine) hasAnyForeignKey(t *catalog.Table) bool {
	if len(t.ForeignKeys) > 0 {
		return true
	}
	for _, r := range e.relationships {
		if strings.EqualFold(r.FromTable, t.Name) {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// repeatingGroups finds sets of columns whose names differ only by a numeric
// suffix, like phone1/phone2/phone3, the classic first-normal-form smell.
// Each base name with two or more numbered variants is one group.
func repeatingGroups(t *catalog.Table) []string {
	counts := make(map[string]int)
	var order []string
	for _, c := range t.Columns {
		base := strings.TrimRightFunc(c.Name, unicode.IsDigit)
		if base == c.Name || base == "" {
			continue
		}
		key := strings.ToLower(base)
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	var groups []string
	for _, base := range order {
		if counts[base] >= 2 {
			groups = append(groups, base)
		}
	}
	return groups
}
