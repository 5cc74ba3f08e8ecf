package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	scripts []string
	failOn  int
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.scripts = append(r.scripts, sql)
	if r.failOn > 0 && len(r.scripts) == r.failOn {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	return pgconn.CommandTag{}, nil
}

func TestFilesAreOrdered(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_trade_schema.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestRunPostgresAppliesEveryFile(t *testing.T) {
	db := &recordingExecer{}

	applied, err := RunPostgres(context.Background(), db)
	require.NoError(t, err)

	files, _ := Files()
	assert.Equal(t, files, applied)
	assert.Contains(t, db.scripts[0], "CREATE TABLE IF NOT EXISTS trade.roi_calculations")
}

func TestRunPostgresStopsOnError(t *testing.T) {
	db := &recordingExecer{failOn: 1}

	applied, err := RunPostgres(context.Background(), db)
	require.Error(t, err)
	assert.Empty(t, applied)
	assert.Contains(t, err.Error(), "001_trade_schema.sql")
}
