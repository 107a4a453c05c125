package catalog

import (
	"strings"
)

// ValidationMode selects how treatment options are judged when the
// caller does not supply an explicit success flag.
type ValidationMode string

const (
	// ModeCatalog accepts any option from the fixed global catalog.
	ModeCatalog ValidationMode = "catalog"
	// ModeDisease accepts only options valid for the patient's diseases.
	ModeDisease ValidationMode = "disease"
)

// TreatmentOptions is the fixed global catalog of canonical treatments.
// Reference data with no write path; loaded once at startup.
var TreatmentOptions = []string{
	"Chemotherapy",
	"Radiation therapy",
	"Surgery",
	"Antibiotics",
	"Antiviral medication",
	"Physical therapy",
	"Dialysis",
	"Rest and hydration",
}

// diseaseTreatments maps a disease name to the treatments considered
// valid for it under disease-specific validation.
var diseaseTreatments = map[string][]string{
	"Cancer":         {"Chemotherapy", "Radiation therapy", "Surgery"},
	"Influenza":      {"Antiviral medication", "Rest and hydration"},
	"Pneumonia":      {"Antibiotics", "Rest and hydration"},
	"Tuberculosis":   {"Antibiotics"},
	"Kidney failure": {"Dialysis", "Surgery"},
	"Fracture":       {"Surgery", "Physical therapy"},
	"Common cold":    {"Rest and hydration"},
	"Hepatitis B":    {"Antiviral medication"},
}

// SeedDisease describes one entry of the startup disease seed.
type SeedDisease struct {
	Name       string
	IsTerminal bool
}

// SeedDiseases is the disease catalog inserted at startup when absent.
var SeedDiseases = []SeedDisease{
	{Name: "Cancer", IsTerminal: true},
	{Name: "Influenza", IsTerminal: false},
	{Name: "Pneumonia", IsTerminal: false},
	{Name: "Tuberculosis", IsTerminal: true},
	{Name: "Kidney failure", IsTerminal: true},
	{Name: "Fracture", IsTerminal: false},
	{Name: "Common cold", IsTerminal: false},
	{Name: "Hepatitis B", IsTerminal: false},
}

// ParseMode returns the validation mode named by s, defaulting to
// catalog mode for unknown values.
func ParseMode(s string) ValidationMode {
	if ValidationMode(strings.ToLower(s)) == ModeDisease {
		return ModeDisease
	}
	return ModeCatalog
}

// SplitOptions splits a comma-separated option list into trimmed,
// non-empty entries.
func SplitOptions(options string) []string {
	parts := strings.Split(options, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ValidAgainstCatalog reports whether every listed option appears in
// the global catalog. An empty option list is invalid.
func ValidAgainstCatalog(options string) bool {
	return allIn(options, TreatmentOptions)
}

// ValidForDiseases reports whether every listed option is valid for at
// least one of the given diseases.
func ValidForDiseases(options string, diseases []string) bool {
	var allowed []string
	for _, d := range diseases {
		allowed = append(allowed, diseaseTreatments[d]...)
	}
	return allIn(options, allowed)
}

// TreatmentsFor returns the valid treatments for a disease name.
func TreatmentsFor(disease string) []string {
	return diseaseTreatments[disease]
}

func allIn(options string, allowed []string) bool {
	parsed := SplitOptions(options)
	if len(parsed) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = struct{}{}
	}
	for _, opt := range parsed {
		if _, ok := set[strings.ToLower(opt)]; !ok {
			return false
		}
	}
	return true
}
