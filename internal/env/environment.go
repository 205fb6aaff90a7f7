package env

import (
	"fmt"
	"strings"

	"github.com/jefflester/minitrino-sub001/internal/model"
)

// Pair is one KEY=VALUE entry produced by a Provider. Keys are uppercased
// on insertion; an empty value is legal and distinct from an unset key.
type Pair struct {
	Key   string
	Value string
}

// ParsePair splits a "KEY=VALUE" string on the first '=' only, so a value
// may itself contain '='. It fails if no '=' is present or the key is empty
// after trimming.
func ParsePair(s string) (Pair, error) {
	key, value, found := strings.Cut(s, "=")
	if !found {
		return Pair{}, model.NewUserErrorHint(
			"pass environment variables as --env KEY=VALUE",
			"invalid environment variable: %q (missing '=')", s,
		)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return Pair{}, model.NewUserErrorHint(
			"pass environment variables as --env KEY=VALUE",
			"invalid environment variable: %q (empty key)", s,
		)
	}

	return Pair{Key: strings.ToUpper(key), Value: value}, nil
}

// Provider is one ordered source of environment pairs. Providers are merged
// left-to-right by Build; the first provider to set a key wins.
type Provider struct {
	// Name identifies the source in verbose diagnostics
	// (e.g. "cli", "shell", "config-file", "library").
	Name string

	// Pairs returns the source's entries in a stable order. A provider
	// error aborts resolution.
	Pairs func() ([]Pair, error)
}

// Environment is the flattened, invocation-scoped configuration mapping.
// It is owned by exactly one command invocation and never shared across
// goroutines; Build constructs it once and seals it.
type Environment struct {
	order  []string
	values map[string]string
	source map[string]string
}

// Build merges the providers left-to-right with first-writer-wins
// semantics. Providers must be ordered highest precedence first.
func Build(providers ...Provider) (*Environment, error) {
	e := &Environment{
		values: make(map[string]string),
		source: make(map[string]string),
	}

	for _, p := range providers {
		pairs, err := p.Pairs()
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			key := strings.ToUpper(pair.Key)
			if _, exists := e.values[key]; exists {
				// A higher-precedence source already set this key.
				continue
			}
			e.order = append(e.order, key)
			e.values[key] = pair.Value
			e.source[key] = p.Name
		}
	}

	return e, nil
}

// Get returns the value for key, or fallback when the key is unset. It
// never returns a "null": an unset key with an empty fallback yields "".
func (e *Environment) Get(key, fallback string) string {
	if v, ok := e.values[strings.ToUpper(key)]; ok {
		return v
	}
	return fallback
}

// Has reports whether the key is set, distinguishing an empty value from
// an unset key.
func (e *Environment) Has(key string) bool {
	_, ok := e.values[strings.ToUpper(key)]
	return ok
}

// Publish inserts a key that must not already exist. It is the single
// post-build mutation point, used by port assignment after resolution has
// fully completed; publishing an existing key is a programming error
// surfaced as a system error.
func (e *Environment) Publish(key, value string) error {
	key = strings.ToUpper(key)
	if _, exists := e.values[key]; exists {
		return model.NewSystemError("environment variable %s is already set (source: %s)", key, e.source[key])
	}
	e.order = append(e.order, key)
	e.values[key] = value
	e.source[key] = "runtime"
	return nil
}

// Snapshot returns all entries in insertion order, for diagnostics and for
// passing the full mapping to subprocesses.
func (e *Environment) Snapshot() []Pair {
	pairs := make([]Pair, 0, len(e.order))
	for _, key := range e.order {
		pairs = append(pairs, Pair{Key: key, Value: e.values[key]})
	}
	return pairs
}

// Source returns the provider name that set the key, or "" if unset.
func (e *Environment) Source(key string) string {
	return e.source[strings.ToUpper(key)]
}

// String renders the mapping one KEY=VALUE per line, insertion-ordered.
func (e *Environment) String() string {
	var b strings.Builder
	for _, key := range e.order {
		fmt.Fprintf(&b, "%s=%s\n", key, e.values[key])
	}
	return b.String()
}
