package ml

import (
	"fmt"
	"strings"
)

// CheckRequirements verifies that this binary can run the bundle: every required component
// is supported and the declared features line up with the listing record.
func CheckRequirements(b *Bundle) error {
	var missing []string
	for _, name := range b.Requires {
		if !supportsComponent(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (supported: %s)",
			ErrMissingDependency, strings.Join(missing, ", "), strings.Join(Components(), ", "))
	}

	if err := checkFeatures(b.Features); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	for _, field := range ListingFields() {
		_, ok := b.Encoders[field]
		switch {
		case isCategorical(field) && !ok:
			return fmt.Errorf("%w: no encoder for categorical field %s", ErrInvalidBundle, field)
		case !isCategorical(field) && ok:
			return fmt.Errorf("%w: numeric field %s has an encoder", ErrInvalidBundle, field)
		}
	}
	for field := range b.Encoders {
		if !isListingField(field) {
			return fmt.Errorf("%w: encoder for unknown field %s", ErrInvalidBundle, field)
		}
	}
	return nil
}

// checkFeatures requires the feature list to be a permutation of the listing fields.
func checkFeatures(features []string) error {
	if len(features) != len(ListingFields()) {
		return fmt.Errorf("expected %d features, got %d", len(ListingFields()), len(features))
	}
	seen := make(map[string]bool, len(features))
	for _, name := range features {
		if !isListingField(name) {
			return fmt.Errorf("unknown feature %q", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = true
	}
	return nil
}

func isListingField(name string) bool {
	for _, field := range ListingFields() {
		if field == name {
			return true
		}
	}
	return false
}
