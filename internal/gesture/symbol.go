// Package gesture classifies hand landmarks into a closed set of gesture symbols.
package gesture

import "fmt"

// Symbol is a discrete gesture outcome.
type Symbol int

const (
	None Symbol = iota
	Zero
	One
	Two
	Three
	Four
	Five
	Pinch
	Heart

	// NumSymbols is the size of the symbol set, for symbol-indexed tables.
	NumSymbols
)

var symbolNames = [NumSymbols]string{
	None:  "NONE",
	Zero:  "0",
	One:   "1",
	Two:   "2",
	Three: "3",
	Four:  "4",
	Five:  "5",
	Pinch: "PINCH",
	Heart: "HEART",
}

var symbolLabels = [NumSymbols]string{
	None:  "SYSTEM_IDLE",
	Zero:  "SPHERE",
	One:   "CUBE",
	Two:   "TORUS",
	Three: "OCTAHEDRON",
	Four:  "ICOSAHEDRON",
	Five:  "DODECAHEDRON",
	Pinch: "PINCH_SINGULARITY",
	Heart: "QUANTUM_HEART",
}

// Valid reports whether s is one of the defined symbols.
func (s Symbol) Valid() bool {
	return s >= None && s < NumSymbols
}

func (s Symbol) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Symbol(%d)", int(s))
	}
	return symbolNames[s]
}

// Label is the HUD text shown while s is active. Unknown symbols show the idle label.
func (s Symbol) Label() string {
	if !s.Valid() {
		return symbolLabels[None]
	}
	return symbolLabels[s]
}

// FromCount maps a count of extended fingers to its numeric symbol.
func FromCount(n int) Symbol {
	if n < 0 || n > 5 {
		return None
	}
	return Zero + Symbol(n)
}

// ParseSymbol is the inverse of String.
func ParseSymbol(s string) (Symbol, error) {
	for i, name := range symbolNames {
		if name == s {
			return Symbol(i), nil
		}
	}
	return None, fmt.Errorf("unknown gesture symbol %q", s)
}

// MarshalText encodes the symbol by name.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a symbol name.
func (s *Symbol) UnmarshalText(text []byte) error {
	v, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
