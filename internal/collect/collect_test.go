package collect

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/chlineage/internal/catalog"
	"github.com/leapstack-labs/chlineage/internal/testutil"
)

// fakeSource serves canned DDL keyed by qualified name.
type fakeSource struct {
	ddl  map[string]string
	errs map[string]error
}

func (f *fakeSource) ViewDDL(_ context.Context, database, name string) (string, error) {
	key := database + "." + name
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	ddl, ok := f.ddl[key]
	if !ok {
		return "", errors.New("unexpected view " + key)
	}
	return ddl, nil
}

func rel(database, name string) catalog.Relation {
	return catalog.Relation{Database: database, Name: name, Engine: "View"}
}

func TestViewsResolvesDependencies(t *testing.T) {
	src := &fakeSource{ddl: map[string]string{
		"analytics.daily": "CREATE VIEW analytics.daily AS SELECT * FROM events JOIN analytics.users ON a = b",
	}}

	res := Views(context.Background(), src, []catalog.Relation{rel("analytics", "daily")}, testutil.NewTestLogger(t))

	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string][]string{
		"analytics.daily": {"analytics.events", "analytics.users"},
	}, res.Dependencies)
}

func TestViewsIsolatesFailures(t *testing.T) {
	src := &fakeSource{
		ddl: map[string]string{
			"db.good":   "CREATE VIEW db.good AS SELECT * FROM db.base",
			"db.broken": "not a statement at all",
		},
		errs: map[string]error{
			"db.gone": errors.New("connection reset"),
		},
	}
	views := []catalog.Relation{rel("db", "good"), rel("db", "broken"), rel("db", "gone")}

	res := Views(context.Background(), src, views, testutil.NewTestLogger(t))

	assert.Equal(t, map[string][]string{"db.good": {"db.base"}}, res.Dependencies)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors["db.broken"], "no_entry_rule: ")
	assert.Equal(t, "ddl_fetch: connection reset", res.Errors["db.gone"])

	// A view never lands in both maps.
	for key := range res.Errors {
		assert.NotContains(t, res.Dependencies, key)
	}
}

func TestViewsEmptyDependencyListStaysNonNil(t *testing.T) {
	src := &fakeSource{ddl: map[string]string{
		"db.v": "CREATE VIEW db.v AS SELECT * FROM s3('https://example.com/x.csv', 'CSV')",
	}}

	res := Views(context.Background(), src, []catalog.Relation{rel("db", "v")}, nil)

	require.Contains(t, res.Dependencies, "db.v")
	assert.NotNil(t, res.Dependencies["db.v"])
	assert.Empty(t, res.Dependencies["db.v"])
}

func TestViewsResultMarshalsBothKeys(t *testing.T) {
	res := Views(context.Background(), &fakeSource{}, nil, nil)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"view_dependencies": {}, "errors": {}}`, string(raw))
}
