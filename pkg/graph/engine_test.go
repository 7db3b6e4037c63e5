package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlinsight/sqlinsight/pkg/catalog"
	"github.com/sqlinsight/sqlinsight/pkg/tokenizer"
)

func analyze(t *testing.T, sql string) *Analysis {
	t.Helper()
	return Analyze(catalog.Build(tokenizer.Split(sql)), DefaultLexicon())
}

func findRel(rels []Relationship, from, to string) *Relationship {
	for i := range rels {
		if rels[i].FromTable == from && rels[i].ToTable == to {
			return &rels[i]
		}
	}
	return nil
}

func TestExplicitForeignKeyEdge(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT,
			FOREIGN KEY(user_id) REFERENCES users(id));
	`)

	require.Len(t, a.Relationships, 1)
	r := a.Relationships[0]
	assert.Equal(t, "orders", r.FromTable)
	assert.Equal(t, "user_id", r.FromColumn)
	assert.Equal(t, "users", r.ToTable)
	assert.Equal(t, "id", r.ToColumn)
	assert.Equal(t, KindOneToMany, r.Kind)
	assert.True(t, r.Explicit)
	assert.Equal(t, 1.0, r.Confidence)
}

func TestInferredByNamingConvention(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE customer (id INT PRIMARY KEY);
		CREATE TABLE invoice (id INT PRIMARY KEY, customer_id INT);
		CREATE TABLE shipment (id INT PRIMARY KEY, customerid INT);
	`)

	inv := findRel(a.Relationships, "invoice", "customer")
	require.NotNil(t, inv, "customer_id should infer an edge")
	assert.False(t, inv.Explicit)
	assert.Equal(t, 0.9, inv.Confidence)
	assert.Equal(t, "id", inv.ToColumn)

	shp := findRel(a.Relationships, "shipment", "customer")
	require.NotNil(t, shp, "the squashed customerid spelling also counts")
	assert.Equal(t, 0.9, shp.Confidence)
}

func TestInferenceRequiresTypeCompatibility(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE customer (id INT PRIMARY KEY);
		CREATE TABLE note (id INT PRIMARY KEY, customer_id VARCHAR(40));
	`)
	assert.Nil(t, findRel(a.Relationships, "note", "customer"),
		"integer PK and string column are never compatible")
}

func TestInferenceTargetsPrimaryKeysOnly(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE customer (id INT);
		CREATE TABLE invoice (id INT PRIMARY KEY, customer_id INT);
	`)
	assert.Nil(t, findRel(a.Relationships, "invoice", "customer"),
		"no inference against a table with no primary key")
}

func TestInferredBySimilarity(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE accounts (account_code VARCHAR(20) PRIMARY KEY);
		CREATE TABLE ledger (id INT PRIMARY KEY, account_codes VARCHAR(20));
	`)

	r := findRel(a.Relationships, "ledger", "accounts")
	require.NotNil(t, r)
	assert.False(t, r.Explicit)
	// similarity("account_codes","account_code") = 1 - 1/13
	sim := Similarity("account_codes", "account_code")
	assert.Greater(t, sim, 0.8)
	assert.InDelta(t, sim*0.7, r.Confidence, 1e-9)
}

func TestExplicitEdgeSuppressesInference(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT,
			FOREIGN KEY(user_id) REFERENCES users(id));
	`)

	count := 0
	for _, r := range a.Relationships {
		if r.FromTable == "orders" && r.ToTable == "users" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the declared edge is not duplicated by inference")
	assert.True(t, a.Relationships[0].Explicit)
}

func TestSelfReferenceClassification(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE employees (id INT PRIMARY KEY, manager_id INT,
			FOREIGN KEY(manager_id) REFERENCES employees(id));
	`)
	require.Len(t, a.Relationships, 1)
	assert.Equal(t, KindSelfReference, a.Relationships[0].Kind)
}

func TestOneToOneClassification(t *testing.T) {
	// The profile's primary key doubles as the foreign key: one row each way.
	a := analyze(t, `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE user_profile (user_id INT PRIMARY KEY,
			FOREIGN KEY(user_id) REFERENCES users(id));
	`)
	require.Len(t, a.Relationships, 1)
	assert.Equal(t, KindOneToOne, a.Relationships[0].Kind)
}

func TestDanglingForeignKeyBecomesSuggestion(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT,
			FOREIGN KEY(user_id) REFERENCES users(id));
	`)
	assert.Empty(t, a.Relationships)

	var found bool
	for _, s := range a.Suggestions {
		if s.Table == "orders" {
			assert.Contains(t, s.Message, "undeclared table")
			found = true
		}
	}
	assert.True(t, found)
}

func TestJunctionTableSuggestion(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE student (id INT PRIMARY KEY);
		CREATE TABLE course (id INT PRIMARY KEY);
	`)

	var hits []MissingTable
	for _, mt := range a.MissingTables {
		if mt.Name == "enrollment" {
			hits = append(hits, mt)
		}
	}
	require.Len(t, hits, 1, "exactly one enrollment suggestion")
	assert.Equal(t, 0.8, hits[0].Confidence)

	// The skeleton carries both owning foreign keys as a composite key.
	require.Len(t, hits[0].Columns, 2)
	for _, c := range hits[0].Columns {
		assert.True(t, c.IsPrimaryKey)
		assert.True(t, c.IsForeignKey)
		assert.Equal(t, "id", c.RefColumn)
	}
}

func TestJunctionSuggestionSkippedWhenPresent(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE student (id INT PRIMARY KEY);
		CREATE TABLE course (id INT PRIMARY KEY);
		CREATE TABLE enrollment (student_id INT, course_id INT,
			PRIMARY KEY(student_id, course_id));
	`)
	for _, mt := range a.MissingTables {
		assert.NotEqual(t, "enrollment", mt.Name)
	}
}

func TestSatelliteSuggestions(t *testing.T) {
	a := analyze(t, `CREATE TABLE users (id INT PRIMARY KEY);`)

	byName := map[string]MissingTable{}
	for _, mt := range a.MissingTables {
		byName[mt.Name] = mt
	}
	profile, ok := byName["user_profile"]
	require.True(t, ok, "user tables suggest a profile satellite")
	assert.Equal(t, 0.7, profile.Confidence)

	// Skeleton: surrogate key, owning FK typed after the owner's key,
	// created/updated timestamps.
	require.Len(t, profile.Columns, 4)
	assert.Equal(t, "id", profile.Columns[0].Name)
	assert.True(t, profile.Columns[0].IsPrimaryKey)
	fk := profile.Columns[1]
	assert.Equal(t, "user_id", fk.Name)
	assert.True(t, fk.IsForeignKey)
	assert.Equal(t, "users", fk.RefTable)
	assert.Equal(t, "id", fk.RefColumn)
	assert.Equal(t, "created_at", profile.Columns[2].Name)
	assert.Equal(t, "updated_at", profile.Columns[3].Name)
}

func TestAuditSuggestionOnLargeSchemas(t *testing.T) {
	small := analyze(t, `
		CREATE TABLE t1 (id INT PRIMARY KEY);
		CREATE TABLE t2 (id INT PRIMARY KEY);
	`)
	for _, mt := range small.MissingTables {
		assert.NotEqual(t, "audit_log", mt.Name, "small schemas stay quiet")
	}

	sql := ""
	for _, n := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11"} {
		sql += "CREATE TABLE " + n + " (id INT PRIMARY KEY);\n"
	}
	big := Analyze(catalog.Build(tokenizer.Split(sql)), DefaultLexicon())

	var audit *MissingTable
	for i := range big.MissingTables {
		if big.MissingTables[i].Name == "audit_log" {
			audit = &big.MissingTables[i]
		}
	}
	require.NotNil(t, audit)
	assert.Equal(t, 0.9, audit.Confidence)

	// An existing log table silences it.
	withLog := Analyze(catalog.Build(tokenizer.Split(sql+"CREATE TABLE change_log (id INT PRIMARY KEY);\n")), DefaultLexicon())
	for _, mt := range withLog.MissingTables {
		assert.NotEqual(t, "audit_log", mt.Name)
	}
}

func TestCyclicGroupsAndCreationOrder(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE a (id INT PRIMARY KEY, b_id INT, FOREIGN KEY(b_id) REFERENCES b(id));
		CREATE TABLE b (id INT PRIMARY KEY, a_id INT, FOREIGN KEY(a_id) REFERENCES a(id));
		CREATE TABLE c (id INT PRIMARY KEY, a_id INT, FOREIGN KEY(a_id) REFERENCES a(id));
	`)

	require.Len(t, a.CyclicGroups, 1)
	assert.Equal(t, []string{"a", "b"}, a.CyclicGroups[0])

	// a and b cannot be ordered; c only depends on a, but a never becomes
	// creatable, so everything stays unordered here.
	assert.Empty(t, a.CreationOrder)
	assert.Len(t, a.Unordered, 3)
}

func TestCreationOrderAcyclic(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT,
			FOREIGN KEY(user_id) REFERENCES users(id));
		CREATE TABLE order_item (id INT PRIMARY KEY, order_id INT,
			FOREIGN KEY(order_id) REFERENCES orders(id));
	`)

	assert.Empty(t, a.CyclicGroups)
	assert.Empty(t, a.Unordered)
	require.Len(t, a.CreationOrder, 3)

	pos := map[string]int{}
	for i, n := range a.CreationOrder {
		pos[n] = i
	}
	assert.Less(t, pos["users"], pos["orders"])
	assert.Less(t, pos["orders"], pos["order_item"])
}

func TestHealthScores(t *testing.T) {
	// Two tables, both with PKs, one with an FK:
	// integrity = 50*(2/2) + 50*min(1, 1/2) = 75.
	a := analyze(t, `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT,
			FOREIGN KEY(user_id) REFERENCES users(id));
	`)
	assert.InDelta(t, 75, a.Health.Integrity, 1e-9)
	assert.InDelta(t, 100, a.Health.Normalization, 1e-9)
	assert.InDelta(t, 100, a.Health.Performance, 1e-9)
	assert.InDelta(t, (75+100+100)/3.0, a.Health.Overall, 1e-9)
}

func TestHealthPenalizesMissingPrimaryKeys(t *testing.T) {
	a := analyze(t, `CREATE TABLE heap (payload TEXT);`)
	// integrity: no PK, no FK -> 0; performance: 100-25 = 75.
	assert.InDelta(t, 0, a.Health.Integrity, 1e-9)
	assert.InDelta(t, 75, a.Health.Performance, 1e-9)

	var hinted bool
	for _, s := range a.Suggestions {
		if s.Table == "heap" {
			hinted = true
		}
	}
	assert.True(t, hinted, "missing primary key produces a suggestion")
}

func TestHealthPenalizesRepeatingGroups(t *testing.T) {
	a := analyze(t, `
		CREATE TABLE contacts (
			id INT PRIMARY KEY,
			phone1 VARCHAR(20),
			phone2 VARCHAR(20),
			phone3 VARCHAR(20)
		);
	`)
	// One repeating group (phone): normalization 100-20 = 80.
	assert.InDelta(t, 80, a.Health.Normalization, 1e-9)

	var flagged bool
	for _, s := range a.Suggestions {
		if s.Table == "contacts" {
			flagged = true
		}
	}
	assert.True(t, flagged)
}

func TestHealthWideTablePenalties(t *testing.T) {
	cols := "id INT PRIMARY KEY"
	for i := 1; i <= 21; i++ {
		cols += ", c" + string(rune('a'+i/10)) + string(rune('a'+i%10)) + " INT"
	}
	a := analyze(t, "CREATE TABLE wide ("+cols+");")

	// 22 columns: normalization 100-10 = 90, performance 100-15 = 85.
	assert.InDelta(t, 90, a.Health.Normalization, 1e-9)
	assert.InDelta(t, 85, a.Health.Performance, 1e-9)
}

func TestHealthEmptyCatalog(t *testing.T) {
	a := analyze(t, "SELECT 1;")
	assert.Equal(t, 100.0, a.Health.Overall)
	assert.Empty(t, a.Relationships)
}

func TestRepeatingGroups(t *testing.T) {
	tbl := &catalog.Table{Columns: []catalog.Column{
		{Name: "id"},
		{Name: "phone1"}, {Name: "phone2"},
		{Name: "addr1"},
		{Name: "line1"}, {Name: "line2"}, {Name: "line3"},
		{Name: "sha256"},
	}}
	groups := repeatingGroups(tbl)
	assert.Equal(t, []string{"phone", "line"}, groups,
		"single numbered columns and hash-style names are not groups")
}

func TestEngineRunDeterministic(t *testing.T) {
	sql := `
		CREATE TABLE users (id INT PRIMARY KEY);
		CREATE TABLE orders (id INT PRIMARY KEY, user_id INT);
		CREATE TABLE product (id INT PRIMARY KEY);
	`
	first := analyze(t, sql)
	second := analyze(t, sql)
	assert.Equal(t, first, second)
}
