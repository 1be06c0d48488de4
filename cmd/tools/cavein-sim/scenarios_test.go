package main

import (
	"testing"

	"github.com/annel0/mmo-cavein/internal/cavein"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTrials_AdjacentSupport(t *testing.T) {
	cfg := cavein.DefaultConfig()
	report, err := runTrials(cfg, 1, 4000, 42)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, report.Instability, 1e-9)
	assert.InDelta(t, 0.501*cfg.CollapseChance, report.Expected, 1e-9)
	assert.InDelta(t, report.Expected, report.Observed(), 0.03)
}

func TestRunTrials_RejectsDistance(t *testing.T) {
	_, err := runTrials(cavein.DefaultConfig(), 0, 10, 1)
	assert.Error(t, err)
}

func TestRunPlane_StaysWithinCap(t *testing.T) {
	report, err := runPlane(cavein.DefaultConfig(), 50, 7)
	require.NoError(t, err)

	assert.NotEmpty(t, report.Gather.Positions)
	assert.LessOrEqual(t, len(report.Gather.Positions), report.Gather.Cap)
	assert.LessOrEqual(t, report.Gather.Cap, 131)
}

func TestRunColumn(t *testing.T) {
	rows, err := runColumn(cavein.DefaultConfig(), "pillar", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, r := range rows {
		assert.Equal(t, 5, r.Strength, "рейтинг колонны доходит до %v", r.Pos)
		assert.False(t, r.Unconnected)
		assert.Zero(t, r.Instability)
	}

	_, err = runColumn(cavein.DefaultConfig(), "glass", 3)
	assert.Error(t, err)
}
