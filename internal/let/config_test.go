package let

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/letscore/internal/config"
	"github.com/banshee-data/letscore/internal/let/grid"
	"github.com/banshee-data/letscore/internal/let/stopping"
	"github.com/banshee-data/letscore/internal/testutil"
)

func actorConfigFromJSON(t *testing.T, s string) *config.ActorConfig {
	t.Helper()
	ac := config.EmptyActorConfig()
	require.NoError(t, json.Unmarshal([]byte(s), ac))
	return ac
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"dose_average":   DoseAveraged,
		"doseAveraged":   DoseAveraged,
		"DOSE_AVERAGE":   DoseAveraged,
		"track_average":  TrackAveraged,
		"trackAveraged":  TrackAveraged,
		"Track_Averaged": TrackAveraged,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("fluence_average")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfig_JSONRoundTripsNames(t *testing.T) {
	cfg := testConfig(TrackAveraged)
	cfg.Target = TargetDose
	cfg.HitType = HitRandom

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"averaging_method":"track_average"`)
	assert.Contains(t, string(data), `"target":"dose"`)
	assert.Contains(t, string(data), `"hit_type":"random"`)

	var back Config
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}

func TestConfigFromActorConfig_Defaults(t *testing.T) {
	cfg, err := ConfigFromActorConfig(config.MustLoadDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "World", cfg.AttachedTo)
	assert.Equal(t, DoseAveraged, cfg.Method)
	assert.Equal(t, TargetEnergy, cfg.Target)
	assert.Equal(t, HitMiddle, cfg.HitType)
	assert.False(t, cfg.ConvertToMaterial)
	assert.Equal(t, [3]int{100, 100, 100}, cfg.Geometry.Size)

	// the default grid is centred on the volume
	idx, ok := cfg.Geometry.IndexOf([3]float64{0.5, 0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, grid.Index{I: 50, J: 50, K: 50}, idx)
	_, ok = cfg.Geometry.IndexOf([3]float64{-50.5, 0, 0})
	assert.False(t, ok)
}

func TestConfigFromActorConfig_ScoreIn(t *testing.T) {
	ac := actorConfigFromJSON(t, `{"attached_to":"phantom","averaging_method":"trackAveraged","score_in":"G4_WATER","size":[4,4,4]}`)
	cfg, err := ConfigFromActorConfig(ac)
	require.NoError(t, err)
	assert.Equal(t, TrackAveraged, cfg.Method)
	assert.True(t, cfg.ConvertToMaterial)
	assert.Equal(t, "G4_WATER", cfg.OtherMaterial)

	// score_in material disables conversion
	ac = actorConfigFromJSON(t, `{"score_in":"material"}`)
	cfg, err = ConfigFromActorConfig(ac)
	require.NoError(t, err)
	assert.False(t, cfg.ConvertToMaterial)
}

func TestConfigFromActorConfig_Origin(t *testing.T) {
	ac := actorConfigFromJSON(t, `{"size":[2,1,1],"spacing":[2,2,2],"origin":[1,1,1],"translation":[10,0,0]}`)
	cfg, err := ConfigFromActorConfig(ac)
	require.NoError(t, err)

	idx, ok := cfg.Geometry.IndexOf([3]float64{13, 1, 1})
	require.True(t, ok)
	assert.Equal(t, grid.Index{I: 1}, idx)
}

func TestConfigFromActorConfig_Errors(t *testing.T) {
	for name, s := range map[string]string{
		"method":   `{"averaging_method":"fluence"}`,
		"hit type": `{"hit_type":"sideways"}`,
		"target":   `{"target":"kerma"}`,
		"size":     `{"size":[0,1,1]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ConfigFromActorConfig(actorConfigFromJSON(t, s))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestServiceFromActorConfig(t *testing.T) {
	svc, err := ServiceFromActorConfig(config.EmptyActorConfig())
	require.NoError(t, err)
	assert.Contains(t, svc.Materials(), "G4_WATER")

	dir := t.TempDir()
	path := testutil.WriteJSON(t, dir, "tables.json", []stopping.Table{{
		Material:          "SLAB",
		Particle:          "proton",
		Density:           2,
		Energies:          []float64{1, 100},
		MassStoppingPower: []float64{100, 10},
	}})

	svc, err = ServiceFromActorConfig(actorConfigFromJSON(t, `{"stopping_power_tables":"`+path+`"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"SLAB"}, svc.Materials())

	_, err = ServiceFromActorConfig(actorConfigFromJSON(t, `{"stopping_power_tables":"`+filepath.Join(dir, "missing.json")+`"}`))
	assert.ErrorIs(t, err, ErrConfig)
}
