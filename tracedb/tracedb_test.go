package tracedb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AaronC81/hiloz/logic"
	"github.com/AaronC81/hiloz/model"
	"github.com/AaronC81/hiloz/vm"
)

func TestOpenRejectsDSNWithoutScheme(t *testing.T) {
	_, err := Open("no-scheme-here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid DSN")
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("oracle:whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DSN scheme")
}

func TestOpenAndRecordRoundTripsThroughSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")
	db, err := Open("sqlite:" + dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RecordRun("run-1", time.Now(), "model.hz"))
	require.NoError(t, db.RecordStep("run-1", 1, 50, []model.ComponentStateModification{
		{ComponentIdx: 0, Kind: model.ModifyPin, Idx: 0, LogicValue: logic.High},
		{ComponentIdx: 0, Kind: model.ModifyVariable, Idx: 1, Value: vm.NewInteger(7)},
		{ComponentIdx: 1, Kind: model.ModifyDump, Value: vm.NewLogicValue(logic.Low)},
	}))

	var pins, dumps int
	require.NoError(t, db.sql.QueryRow(`SELECT COUNT(*) FROM modifications`).Scan(&pins))
	require.NoError(t, db.sql.QueryRow(`SELECT COUNT(*) FROM dumps`).Scan(&dumps))
	assert.Equal(t, 2, pins)
	assert.Equal(t, 1, dumps)
}

func TestBindRewritesPlaceholdersForPostgresOnly(t *testing.T) {
	pg := &DB{driver: "postgres"}
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, pg.bind(`INSERT INTO t (a, b) VALUES (?, ?)`))

	lite := &DB{driver: "sqlite"}
	assert.Equal(t, `INSERT INTO t (a) VALUES (?)`, lite.bind(`INSERT INTO t (a) VALUES (?)`))
}
