// Package fieldmap bridges the two independent naming schemes for form fields:
// the keys the engine persists (backend keys) and the keys the form renders (UI keys).
//
// The table below is the single source for both directions. Keys that are not in
// the table pass through unchanged so new fields keep working without a mapping.
package fieldmap

import "fmt"

// Pair links a backend key to its UI key.
type Pair struct {
	Backend string
	UI      string
}

var table = []Pair{
	{Backend: "beschreibung_vorhaben", UI: "titel"},
	{Backend: "stichpunkte", UI: "beschreibung"},
	{Backend: "ansprechpartner_name", UI: "ansprechpartner"},
	{Backend: "zielsetzung", UI: "zielsetzung"},
	{Backend: "was_passiert_wenn_nicht_erfolgreich", UI: "was_passiert_misserfolg"},
	{Backend: "startdatum", UI: "startdatum"},
	{Backend: "zeithorizont", UI: "zeithorizont"},
	{Backend: "dauer_heisse_phasen", UI: "heisse_phasen"},
	{Backend: "strategische_ziele", UI: "strategische_ziele"},
	{Backend: "beitrag_konzernstrategie", UI: "beitrag_konzernstrategie"},
	{Backend: "betroffene_bereiche_personen", UI: "betroffene_bereiche"},
	{Backend: "anzahl_mitarbeitende_fuehrungskraefte", UI: "anzahl_ma_fk"},
	{Backend: "erwartungen_change_begleitung", UI: "erwartungen"},
	{Backend: "changebedarf_pag", UI: "changebedarf"},
	{Backend: "ziel_change_begleitung_von", UI: "von_zu"},
	{Backend: "erfolg_verhindern", UI: "hindernisse"},
	{Backend: "erfolg_beitragen", UI: "erfolgsfaktoren"},
	{Backend: "vereinbarungen", UI: "vereinbarungen"},
	{Backend: "sonstiges", UI: "sonstiges"},
}

var (
	toUI      map[string]string
	toBackend map[string]string
)

func init() {
	var err error
	toUI, toBackend, err = build(table)
	if err != nil {
		panic(err)
	}
}

// build derives both lookup directions and rejects tables that are not a bijection.
func build(pairs []Pair) (map[string]string, map[string]string, error) {
	ui := make(map[string]string, len(pairs))
	backend := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.Backend == "" || p.UI == "" {
			return nil, nil, fmt.Errorf("fieldmap: empty key in pair %+v", p)
		}
		if _, dup := ui[p.Backend]; dup {
			return nil, nil, fmt.Errorf("fieldmap: duplicate backend key %q", p.Backend)
		}
		if _, dup := backend[p.UI]; dup {
			return nil, nil, fmt.Errorf("fieldmap: duplicate UI key %q", p.UI)
		}
		ui[p.Backend] = p.UI
		backend[p.UI] = p.Backend
	}
	return ui, backend, nil
}

// Pairs returns a copy of the mapping table.
func Pairs() []Pair {
	return append([]Pair(nil), table...)
}

// UIKey returns the UI key for a backend key, or the key itself if unmapped.
func UIKey(backendKey string) string {
	if k, ok := toUI[backendKey]; ok {
		return k
	}
	return backendKey
}

// BackendKey returns the backend key for a UI key, or the key itself if unmapped.
func BackendKey(uiKey string) string {
	if k, ok := toBackend[uiKey]; ok {
		return k
	}
	return uiKey
}

// ToUI translates a backend-keyed mapping into UI keys.
func ToUI(values map[string]string) map[string]string {
	return translate(values, toUI)
}

// ToBackend translates a UI-keyed mapping into backend keys.
func ToBackend(values map[string]string) map[string]string {
	return translate(values, toBackend)
}

// translate applies lookup, letting mapped keys win over pass-through keys
// that land on the same target.
func translate(values map[string]string, lookup map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if _, mapped := lookup[k]; !mapped {
			out[k] = v
		}
	}
	for k, v := range values {
		if target, mapped := lookup[k]; mapped {
			out[target] = v
		}
	}
	return out
}
