package engineconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/contracts"
)

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
}

func TestValidate_WeightSum(t *testing.T) {
	cfg := Default()
	cfg.Regime.KRWeight = 0.6
	cfg.Regime.USWeight = 0.5

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "sum to 1.0")
}

func TestValidate_CutoffTableComplete(t *testing.T) {
	cfg := Default()
	delete(cfg.Scoring.Cutoffs[contracts.RegimeBear], contracts.HorizonPosition)

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrConfigInvalid)

	cfg = Default()
	delete(cfg.Scoring.Cutoffs, contracts.RegimeCrash)
	assert.Error(t, Validate(cfg))
}

func TestValidate_CrashThresholds(t *testing.T) {
	cfg := Default()
	cfg.Regime.Crash.IntradayDrawdown = 2.5
	assert.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Regime.Crash.VolIndex = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_MaxCandidates(t *testing.T) {
	cfg := Default()
	cfg.Scoring.MaxCandidates[contracts.HorizonSwing] = 0
	assert.Error(t, Validate(cfg))
}

func TestValidate_Workers(t *testing.T) {
	cfg := Default()
	cfg.Scan.Workers = 0
	assert.Error(t, Validate(cfg))
}

func TestHash_Deterministic(t *testing.T) {
	cfg := Default()

	h1, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// 설정이 다르면 해시도 달라야 함
	cfg.Regime.BullMin = 2.5
	h3, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestLoad_YAMLFile(t *testing.T) {
	cfg, raw, err := Load("../../config/horizon.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// YAML SSOT는 코드 기본값과 일치해야 함
	def := Default()
	hYAML, err := Hash(cfg)
	require.NoError(t, err)
	hDef, err := Hash(def)
	require.NoError(t, err)
	assert.Equal(t, hDef, hYAML, "config/horizon.yaml drifted from Default()")
}

func TestCutoffAndCap(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4.5, cfg.Cutoff(contracts.RegimeNeutral, contracts.HorizonPosition))
	assert.Equal(t, 999.0, cfg.Cutoff(contracts.RegimeBear, contracts.HorizonSwing))
	assert.Equal(t, 10, cfg.Cap(contracts.HorizonSwing))
	assert.Equal(t, 5, cfg.Cap(contracts.HorizonLongterm))
}
