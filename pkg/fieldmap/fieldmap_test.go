package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIKey(t *testing.T) {
	assert.Equal(t, "beschreibung", UIKey("stichpunkte"))
	assert.Equal(t, "titel", UIKey("beschreibung_vorhaben"))
	assert.Equal(t, "von_zu", UIKey("ziel_change_begleitung_von"))
	assert.Equal(t, "zielsetzung", UIKey("zielsetzung"))
	assert.Equal(t, "brand_new_field", UIKey("brand_new_field"), "unknown keys pass through")
}

func TestBackendKey(t *testing.T) {
	assert.Equal(t, "stichpunkte", BackendKey("beschreibung"))
	assert.Equal(t, "erfolg_beitragen", BackendKey("erfolgsfaktoren"))
	assert.Equal(t, "projektklasse", BackendKey("projektklasse"))
}

func TestRoundTrip(t *testing.T) {
	backend := make(map[string]string)
	for i, p := range Pairs() {
		backend[p.Backend] = string(rune('a' + i))
	}

	ui := ToUI(backend)
	assert.Len(t, ui, len(backend))
	assert.Equal(t, backend, ToBackend(ui))
}

func TestRoundTrip_UnmappedKeysSurvive(t *testing.T) {
	backend := map[string]string{
		"stichpunkte":  "x",
		"custom_field": "y",
	}
	ui := ToUI(backend)
	assert.Equal(t, map[string]string{"beschreibung": "x", "custom_field": "y"}, ui)
	assert.Equal(t, backend, ToBackend(ui))
}

func TestTranslate_MappedKeyWinsCollision(t *testing.T) {
	// "titel" is not a backend key, so it passes through and collides with
	// the mapped beschreibung_vorhaben -> titel.
	backend := map[string]string{
		"beschreibung_vorhaben": "mapped",
		"titel":                 "stray",
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "mapped", ToUI(backend)["titel"])
	}
}

func TestBuild_RejectsDrift(t *testing.T) {
	_, _, err := build([]Pair{{Backend: "a", UI: "x"}, {Backend: "b", UI: "x"}})
	require.Error(t, err)

	_, _, err = build([]Pair{{Backend: "a", UI: "x"}, {Backend: "a", UI: "y"}})
	require.Error(t, err)

	_, _, err = build([]Pair{{Backend: "", UI: "x"}})
	require.Error(t, err)
}
