package mode

import "github.com/derekjytan/xai/internal/domain"

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid runs token and vector retrieval and fuses the two lists.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// Parse validates a mode string. Empty selects Hybrid.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Hybrid, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", domain.NewValidationError("mode", "must be keyword, semantic or hybrid, got %q", s)
	}
	return m, nil
}
