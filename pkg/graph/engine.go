package graph

import (
	"fmt"
	"strings"

	"github.com/sqlinsight/sqlinsight/pkg/catalog"
)

// MissingTable suggests a table the schema probably wants, with a minimal
// column skeleton the caller can render as DDL.
type MissingTable struct {
	Name       string           `json:"name" yaml:"name"`
	Reason     string           `json:"reason" yaml:"reason"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
	Columns    []catalog.Column `json:"columns" yaml:"columns"`
}

// Suggestion is a per-table optimization hint.
type Suggestion struct {
	Table   string `json:"table" yaml:"table"`
	Message string `json:"message" yaml:"message"`
}

// Health carries the three 0-100 schema sub-scores and their mean.
type Health struct {
	Integrity     float64 `json:"integrity" yaml:"integrity"`
	Normalization float64 `json:"normalization" yaml:"normalization"`
	Performance   float64 `json:"performance" yaml:"performance"`
	Overall       float64 `json:"overall" yaml:"overall"`
}

// Analysis is the terminal output of one engine run. It is a plain value;
// nothing mutates it after Run returns.
type Analysis struct {
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
	MissingTables []MissingTable `json:"missingTables,omitempty" yaml:"missingTables,omitempty"`
	Suggestions   []Suggestion   `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// CyclicGroups lists foreign-key cycles found by SCC detection, each
	// group's table names sorted. CreationOrder is the order the tables can
	// be created in; tables caught in a cycle end up in Unordered instead.
	CyclicGroups  [][]string `json:"cyclicGroups,omitempty" yaml:"cyclicGroups,omitempty"`
	CreationOrder []string   `json:"creationOrder,omitempty" yaml:"creationOrder,omitempty"`
	Unordered     []string   `json:"unordered,omitempty" yaml:"unordered,omitempty"`

	Health Health `json:"health" yaml:"health"`
}

type phase int

const (
	phaseBuilt phase = iota + 1
	phaseResolved
	phaseSuggested
	phaseScored
)

// Engine runs the schema analysis over one catalog snapshot in four fixed
// phases: build the graph from declared foreign keys, resolve inferred
// relationships, generate suggestions, score. Engines are single-use; the
// catalog must not change during a run.
type Engine struct {
	cat   *catalog.Catalog
	lex   Lexicon
	graph *Graph
	phase phase
	final *Analysis

	relationships []Relationship
	missing       []MissingTable
	suggestions   []Suggestion
}

// NewEngine returns an engine over the catalog using the given lexicon for
// missing-table suggestions.
func NewEngine(cat *catalog.Catalog, lex Lexicon) *Engine {
	return &Engine{cat: cat, lex: lex}
}

// Analyze is the one-shot form of NewEngine followed by Run.
func Analyze(cat *catalog.Catalog, lex Lexicon) *Analysis {
	return NewEngine(cat, lex).Run()
}

// Run advances through all phases and returns the terminal analysis.
// Running an engine twice returns the same analysis; the phases never
// repeat over the mutated state.
func (e *Engine) Run() *Analysis {
	if e.phase < phaseScored {
		e.build()
		e.resolve()
		e.suggest()
		e.final = e.score()
	}
	return e.final
}

// Graph exposes the underlying graph once built. It returns nil before Run.
func (e *Engine) Graph() *Graph { return e.graph }

// build creates one node per table and one edge per declared foreign key.
// A foreign key whose target table is not in the catalog cannot become an
// edge; it is reported as a suggestion instead.
func (e *Engine) build() {
	e.graph = New(e.cat.TableNames())
	for i := range e.cat.Tables {
		t := &e.cat.Tables[i]
		for _, fk := range t.ForeignKeys {
			r := Relationship{
				FromTable:  t.Name,
				FromColumn: fk.Column,
				ToTable:    fk.RefTable,
				ToColumn:   fk.RefColumn,
				Kind:       e.classify(t, fk.Column, fk.RefTable),
				Confidence: 1,
				Explicit:   true,
			}
			if r.ToColumn == "" {
				if target := e.cat.Table(fk.RefTable); target != nil && target.HasPrimaryKey() {
					r.ToColumn = target.PrimaryKey[0]
				}
			}
			if !e.graph.AddEdge(r) {
				e.suggestions = append(e.suggestions, Suggestion{
					Table:   t.Name,
					Message: fmt.Sprintf("column %q references undeclared table %q", fk.Column, fk.RefTable),
				})
				continue
			}
			e.relationships = append(e.relationships, r)
		}
	}
	e.phase = phaseBuilt
}

// classify decides the relationship kind for an edge leaving fromCol.
// Self-references win, then a source column that is itself part of the
// table's primary key marks a one-to-one, everything else is one-to-many.
func (e *Engine) classify(from *catalog.Table, fromCol, toTable string) Kind {
	if strings.EqualFold(from.Name, toTable) {
		return KindSelfReference
	}
	if from.IsPrimaryKeyColumn(fromCol) {
		return KindOneToOne
	}
	return KindOneToMany
}

// resolve infers relationships the DDL never declared. For every ordered
// pair of distinct tables not already joined by a declared foreign key, a
// column proposes an edge onto a primary-key column of the other table when
// the names match the {table}_id convention (confidence 0.9) or are nearly
// identical by edit distance (confidence similarity x 0.7). Both paths
// require the two declared types to share a type class.
func (e *Engine) resolve() {
	names := e.cat.TableNames()
	for _, n1 := range names {
		t1 := e.cat.Table(n1)
		for _, n2 := range names {
			if strings.EqualFold(n1, n2) {
				continue
			}
			if e.graph.HasEdge(n1, n2) {
				continue
			}
			t2 := e.cat.Table(n2)
			if !t2.HasPrimaryKey() {
				continue
			}
			for ci := range t1.Columns {
				c1 := &t1.Columns[ci]
				if c1.IsForeignKey {
					continue
				}
				if r, ok := e.inferEdge(t1, c1, t2); ok {
					if e.graph.AddEdge(r) {
						e.relationships = append(e.relationships, r)
					}
				}
			}
		}
	}
	e.phase = phaseResolved
}

// inferEdge proposes at most one edge from c1 onto a primary-key column of
// t2. The name-convention match is tried first; the similarity match skips
// source columns that are themselves primary keys, since a key column
// matching another table's key name is an identity, not a reference.
func (e *Engine) inferEdge(t1 *catalog.Table, c1 *catalog.Column, t2 *catalog.Table) (Relationship, bool) {
	lower := strings.ToLower(c1.Name)
	target := strings.ToLower(t2.Name)
	if lower == target+"_id" || lower == target+"id" {
		for _, pk := range t2.PrimaryKey {
			c2 := t2.Column(pk)
			if c2 == nil || !catalog.Compatible(c1.Type, c2.Type) {
				continue
			}
			return Relationship{
				FromTable:  t1.Name,
				FromColumn: c1.Name,
				ToTable:    t2.Name,
				ToColumn:   c2.Name,
				Kind:       e.classify(t1, c1.Name, t2.Name),
				Confidence: 0.9,
			}, true
		}
	}

	if t1.IsPrimaryKeyColumn(c1.Name) {
		return Relationship{}, false
	}
	for _, pk := range t2.PrimaryKey {
		c2 := t2.Column(pk)
		if c2 == nil || !catalog.Compatible(c1.Type, c2.Type) {
			continue
		}
		if sim := Similarity(c1.Name, c2.Name); sim > 0.8 {
			return Relationship{
				FromTable:  t1.Name,
				FromColumn: c1.Name,
				ToTable:    t2.Name,
				ToColumn:   c2.Name,
				Kind:       e.classify(t1, c1.Name, t2.Name),
				Confidence: sim * 0.7,
			}, true
		}
	}
	return Relationship{}, false
}

// suggest emits missing-table suggestions from the lexicon and per-table
// optimization hints. Suggested names are deduplicated, keeping the highest
// confidence when two rules propose the same table.
func (e *Engine) suggest() {
	names := e.cat.TableNames()
	byName := make(map[string]int)

	add := func(mt MissingTable) {
		key := strings.ToLower(mt.Name)
		if i, ok := byName[key]; ok {
			if mt.Confidence > e.missing[i].Confidence {
				e.missing[i] = mt
			}
			return
		}
		byName[key] = len(e.missing)
		e.missing = append(e.missing, mt)
	}

	for _, rule := range e.lex.Stems {
		owner := matchTable(names, rule.Stem)
		if owner == "" {
			continue
		}
		for _, sat := range rule.Satellites {
			if matchTable(names, sat) != "" {
				continue
			}
			add(MissingTable{
				Name:       rule.Stem + "_" + sat,
				Reason:     fmt.Sprintf("tables named like %q usually pair with a %s table", owner, sat),
				Confidence: 0.7,
				Columns:    e.satelliteSkeleton(rule.Stem, owner),
			})
		}
	}

	for _, j := range e.lex.Junctions {
		left := matchTable(names, j.Left)
		right := matchTable(names, j.Right)
		if left == "" || right == "" || matchTable(names, j.Name) != "" {
			continue
		}
		add(MissingTable{
			Name:       j.Name,
			Reason:     fmt.Sprintf("%q and %q usually relate many-to-many through %q", left, right, j.Name),
			Confidence: 0.8,
			Columns:    e.junctionSkeleton(j, left, right),
		})
	}

	if len(names) > e.lex.auditThreshold() && matchTable(names, "audit") == "" && matchTable(names, "log") == "" {
		add(MissingTable{
			Name:       "audit_log",
			Reason:     fmt.Sprintf("schemas with more than %d tables usually track changes in an audit table", e.lex.auditThreshold()),
			Confidence: 0.9,
			Columns: []catalog.Column{
				{Name: "id", Type: "INT", IsPrimaryKey: true},
				{Name: "table_name", Type: "VARCHAR(255)"},
				{Name: "record_id", Type: "INT"},
				{Name: "action", Type: "VARCHAR(50)"},
				{Name: "changed_at", Type: "TIMESTAMP"},
			},
		})
	}

	e.optimizations()
	e.phase = phaseSuggested
}

// satelliteSkeleton builds the minimal column set for a satellite of owner:
// surrogate key, owning foreign key, timestamps.
func (e *Engine) satelliteSkeleton(stem, owner string) []catalog.Column {
	fk := catalog.Column{Name: stem + "_id", Type: "INT", IsForeignKey: true, RefTable: owner}
	if t := e.cat.Table(owner); t != nil && t.HasPrimaryKey() {
		fk.RefColumn = t.PrimaryKey[0]
		if c := t.Column(fk.RefColumn); c != nil {
			fk.Type = c.Type
		}
	}
	return []catalog.Column{
		{Name: "id", Type: "INT", IsPrimaryKey: true},
		fk,
		{Name: "created_at", Type: "TIMESTAMP"},
		{Name: "updated_at", Type: "TIMESTAMP"},
	}
}

// junctionSkeleton builds the two foreign keys of a junction table, both
// part of its composite primary key.
func (e *Engine) junctionSkeleton(j JunctionRule, left, right string) []catalog.Column {
	side := func(stem, table string) catalog.Column {
		c := catalog.Column{Name: stem + "_id", Type: "INT", IsPrimaryKey: true, IsForeignKey: true, RefTable: table}
		if t := e.cat.Table(table); t != nil && t.HasPrimaryKey() {
			c.RefColumn = t.PrimaryKey[0]
			if pk := t.Column(c.RefColumn); pk != nil {
				c.Type = pk.Type
			}
		}
		return c
	}
	return []catalog.Column{side(j.Left, left), side(j.Right, right)}
}

// optimizations appends per-table hints for the shapes the health scores
// penalize, so reports can say what to fix rather than just the number.
func (e *Engine) optimizations() {
	for i := range e.cat.Tables {
		t := &e.cat.Tables[i]
		if !t.HasPrimaryKey() {
			e.suggestions = append(e.suggestions, Suggestion{Table: t.Name, Message: "no primary key declared; add one"})
		}
		if len(t.Columns) > 20 {
			e.suggestions = append(e.suggestions, Suggestion{
				Table:   t.Name,
				Message: fmt.Sprintf("%d columns; consider splitting into narrower tables", len(t.Columns)),
			})
		}
		for _, group := range repeatingGroups(t) {
			e.suggestions = append(e.suggestions, Suggestion{
				Table:   t.Name,
				Message: fmt.Sprintf("repeating column group %q; extract a child table", group),
			})
		}
	}
}

// score computes the health numbers and the graph-level results, producing
// the terminal analysis value.
func (e *Engine) score() *Analysis {
	a := &Analysis{
		Relationships: e.relationships,
		MissingTables: e.missing,
		Suggestions:   e.suggestions,
		Health:        e.health(),
	}

	for _, scc := range e.graph.SCC() {
		if len(scc) > 1 || (len(scc) == 1 && e.graph.HasEdge(scc[0], scc[0])) {
			a.CyclicGroups = append(a.CyclicGroups, scc)
		}
	}
	a.CreationOrder, a.Unordered = e.graph.ReverseTopoSort()

	e.phase = phaseScored
	return a
}
