package config

import "sort"

var Presets = map[string][]string{
	"a_to_b":           {"A = B"},
	"ab_to_c":          {"A + B = C"},
	"dimerisation":     {"2A = A2"},
	"michaelis_menten": {"E + S = ES", "ES = E + P"},
	"inhibition":       {"E + S = ES", "ES = E + P", "E + I = EI"},
	"futile_cycle":     {"S + E1 = C1", "C1 = P + E1", "P + E2 = C2", "C2 = S + E2"},
}

// GetPreset returns a copy of the named reaction list.
func GetPreset(name string) ([]string, bool) {
	rs, ok := Presets[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), rs...), true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
