package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/sink"
)

func TestSink_Write(t *testing.T) {
	cfg := generator.DefaultConfig()
	cfg.Users = 50
	g, err := generator.New(cfg, nil, nil)
	require.NoError(t, err)
	res, err := g.Generate(generator.NewRand(9))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "practice.duckdb")
	ctx := context.Background()
	require.NoError(t, New(path, nil).Write(ctx, res.Document))

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, c := range res.Document.RowCounts() {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "`+c.Name+`"`).Scan(&n))
		assert.Equal(t, c.Rows, n, "table %s", c.Name)
	}

	var total int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT SUM(cost) FROM ad_costs`).Scan(&total))
	assert.Positive(t, total)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "BIGINT", Dialect.IntegerType)
	assert.Equal(t, "?", Dialect.FormatPlaceholder(3))
	assert.True(t, sink.IsRegistered(Name))
}
