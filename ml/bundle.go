package ml

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Bundle is a fitted estimator together with the preprocessing metadata it was trained with.
// It is never mutated after DecodeBundle returns, so one value can serve concurrent requests.
type Bundle struct {
	Name     string
	Version  string
	Target   string
	Features []string
	Requires []string
	Encoders map[string]*LabelEncoder

	model Regressor
}

type bundleFile struct {
	Name     string                   `json:"name"`
	Version  string                   `json:"version"`
	Target   string                   `json:"target"`
	Features []string                 `json:"features"`
	Encoders map[string]*LabelEncoder `json:"encoders"`
	Requires []string                 `json:"requires"`
	Model    json.RawMessage          `json:"model"`
}

// BundleInfo describes a loaded bundle for display.
type BundleInfo struct {
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Target     string              `json:"target"`
	Estimator  string              `json:"estimator"`
	Features   []string            `json:"features"`
	Categories map[string][]string `json:"categories"`
}

// DecodeBundle reads one bundle document and checks its structure and requirements.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var file bundleFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if len(file.Model) == 0 {
		return nil, fmt.Errorf("%w: model is missing", ErrInvalidBundle)
	}

	b := &Bundle{
		Name:     file.Name,
		Version:  file.Version,
		Target:   file.Target,
		Features: file.Features,
		Requires: file.Requires,
		Encoders: file.Encoders,
	}
	if b.Encoders == nil {
		b.Encoders = map[string]*LabelEncoder{}
	}
	for field, encoder := range b.Encoders {
		if encoder == nil {
			return nil, fmt.Errorf("%w: encoder %s is null", ErrInvalidBundle, field)
		}
		if err := encoder.init(); err != nil {
			return nil, fmt.Errorf("%w: encoder %s: %v", ErrInvalidBundle, field, err)
		}
	}
	if err := CheckRequirements(b); err != nil {
		return nil, err
	}

	model, err := decodeRegressor(file.Model, len(b.Features))
	if err != nil {
		return nil, err
	}
	b.model = model
	return b, nil
}

// Estimator returns the fitted regressor.
func (b *Bundle) Estimator() Regressor {
	return b.model
}

// Categories returns the known classes of a categorical field, or nil.
func (b *Bundle) Categories(field string) []string {
	encoder, ok := b.Encoders[field]
	if !ok {
		return nil
	}
	return append([]string(nil), encoder.Classes...)
}

// Predict is PredictPrice bound to this bundle.
func (b *Bundle) Predict(record Record) (float64, error) {
	return PredictPrice(b, record)
}

func (b *Bundle) Info() BundleInfo {
	info := BundleInfo{
		Name:       b.Name,
		Version:    b.Version,
		Target:     b.Target,
		Features:   append([]string(nil), b.Features...),
		Categories: make(map[string][]string, len(b.Encoders)),
	}
	if b.model != nil {
		info.Estimator = b.model.Type()
	}
	for field := range b.Encoders {
		info.Categories[field] = b.Categories(field)
	}
	return info
}
