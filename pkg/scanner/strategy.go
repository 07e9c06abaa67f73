package scanner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
var ErrUnknownStrategy = errors.New("unknown scan strategy")

// Strategy selects how a file's content is searched.
type Strategy int

const (
	// StrategyAutomaton runs one Aho-Corasick pass over the whole content.
	StrategyAutomaton Strategy = iota
	// StrategyNaive searches every signature line by line.
	StrategyNaive
)

func (s Strategy) String() string {
	switch s {
	case StrategyAutomaton:
		return "automaton"
	case StrategyNaive:
		return "naive"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name. "aho-corasick" is accepted as an
// alias of "automaton".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "automaton", "aho-corasick", "ahocorasick":
		return StrategyAutomaton, nil
	case "naive":
		return StrategyNaive, nil
	default:
		return 0, fmt.Errorf("%w: %q (want naive or automaton)", ErrUnknownStrategy, name)
	}
}

// Set implements pflag.Value.
func (s *Strategy) Set(name string) error {
	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}
