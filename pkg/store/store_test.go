package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilsec/promptwall/pkg/types"
)

func sampleReport(score float64, band types.RiskBand) *types.ScanReport {
	return &types.ScanReport{
		RiskScore:     score,
		RiskBand:      band,
		NormalizedLen: 42,
		Findings: []types.Finding{
			{RuleID: "INSTR_OVERRIDE", Span: types.Span{Start: 0, End: 5}, Excerpt: "x", Weight: 25},
		},
		ScoreBreakdown: types.ScoreBreakdown{RawTotal: 25, AdjustedTotal: 25, LengthFactor: 1},
	}
}

func TestStore_AddAndRecent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	id, err := db.AddReport("stdin", sampleReport(25, types.BandMedium))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "stdin", e.Source)
	assert.Equal(t, 25.0, e.RiskScore)
	assert.Equal(t, types.BandMedium, e.RiskBand)
	assert.Equal(t, 42, e.NormalizedLen)
	require.NotNil(t, e.Report)
	assert.Len(t, e.Report.Findings, 1)
}

func TestStore_RecentHonorsLimit(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 5; i++ {
		_, err := db.AddReport("file.txt", sampleReport(float64(i*10), types.BandLow))
		require.NoError(t, err)
	}

	entries, err := db.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStore_EmptyDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	entries, err := db.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
