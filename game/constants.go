package game

import (
	"fmt"
	"strconv"
)

// Well-known engine constants.
const (
	ConstInitialEnergy       = "INITIAL_ENERGY"
	ConstMaxCellProduction   = "MAX_CELL_PRODUCTION"
	ConstNewEntityEnergyCost = "NEW_ENTITY_ENERGY_COST"
	ConstDropoffCost         = "DROPOFF_COST"
	ConstMaxEnergy           = "MAX_ENERGY"
	ConstMaxTurns            = "MAX_TURNS"
)

// ConfigurationMissingError reports a game constant the engine never sent.
type ConfigurationMissingError struct {
	Key string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("game constant %q not provided by engine", e.Key)
}

// Constants is the immutable key/value table sent once at startup.
type Constants struct {
	values map[string]string
}

// NewConstants copies kv so later changes to the caller's map are not seen.
func NewConstants(kv map[string]string) Constants {
	values := make(map[string]string, len(kv))
	for k, v := range kv {
		values[k] = v
	}
	return Constants{values: values}
}

func (c Constants) Len() int { return len(c.values) }

// Lookup returns the raw value for key.
func (c Constants) Lookup(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the raw value or a ConfigurationMissingError.
func (c Constants) String(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", &ConfigurationMissingError{Key: key}
	}
	return v, nil
}

// Uint parses key as an unsigned integer.
func (c Constants) Uint(key string) (uint32, error) {
	v, err := c.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("game constant %s=%q: %w", key, v, err)
	}
	return uint32(n), nil
}

// Bool parses key as a boolean ("true"/"false", "1"/"0").
func (c Constants) Bool(key string) (bool, error) {
	v, err := c.String(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("game constant %s=%q: %w", key, v, err)
	}
	return b, nil
}

// Map returns a copy of every constant.
func (c Constants) Map() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
