package ml

import (
	"errors"
	"fmt"
)

// LabelEncoder maps a categorical value to the index it had in the training-time class list.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

func (e *LabelEncoder) init() error {
	if len(e.Classes) == 0 {
		return errors.New("encoder has no classes")
	}
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		if class == "" {
			return fmt.Errorf("encoder class %d is empty", i)
		}
		if _, dup := e.index[class]; dup {
			return fmt.Errorf("encoder class %q is duplicated", class)
		}
		e.index[class] = i
	}
	return nil
}

// Transform returns the code for value.
func (e *LabelEncoder) Transform(value string) (float64, error) {
	idx, ok := e.index[value]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	return float64(idx), nil
}
