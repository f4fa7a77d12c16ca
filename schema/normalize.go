package schema

import (
	"strconv"
	"strings"
)

// ParsePickCount validates a raw pick count. Only ASCII digits are accepted
// and the value must be non-zero.
func ParsePickCount(raw string) (int, error) {
	if raw == "" {
		return 0, ErrInvalidPickCount
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, ErrInvalidPickCount
		}
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, ErrInvalidPickCount
	}
	return value, nil
}

// NormalizeTabID trims a tab id taken from a path or form value.
func NormalizeTabID(raw string) TabID {
	return TabID(strings.Trim(strings.TrimSpace(raw), "/"))
}

// ValidateCollection checks the structural invariants of a loaded collection.
func ValidateCollection(c Collection) error {
	if len(c) == 0 {
		return ErrEmptyCollection
	}
	seen := make(map[TabID]struct{}, len(c))
	for _, tab := range c {
		if tab.ID == "" {
			return ErrInvalidRequest
		}
		if _, ok := seen[tab.ID]; ok {
			return ErrInvalidRequest
		}
		seen[tab.ID] = struct{}{}
	}
	return nil
}
