package ml

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testBundleJSON(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/airbnb_nyc_tree.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestLoadBundleScansDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.txt", "not a model")
	writeFile(t, dir, "other_model.json", "{}")
	writeFile(t, dir, "airbnb_v1.json", testBundleJSON(t))

	bundle, err := LoadBundle(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Name != "airbnb_nyc_price" {
		t.Fatalf("unexpected bundle name: %s", bundle.Name)
	}
	info := bundle.Info()
	if info.Estimator != TypeRegressionTree {
		t.Fatalf("unexpected estimator: %s", info.Estimator)
	}
	if len(info.Categories[FieldRoomType]) != 3 {
		t.Fatalf("unexpected room types: %v", info.Categories[FieldRoomType])
	}
}

func TestLoadBundleNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.json", testBundleJSON(t))

	if _, err := LoadBundle(dir, "airbnb"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
	if _, err := LoadBundle(filepath.Join(dir, "missing"), "airbnb"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound for missing dir, got %v", err)
	}
	if _, err := LoadBundleFile(filepath.Join(dir, "airbnb.json")); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound for missing file, got %v", err)
	}
}

func TestDecodeBundleMissingDependency(t *testing.T) {
	content := strings.Replace(testBundleJSON(t), `"requires": ["label_encoder", "regression_tree"]`,
		`"requires": ["label_encoder", "gradient_boosting"]`, 1)

	_, err := DecodeBundle(strings.NewReader(content))
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
	if !strings.Contains(err.Error(), "gradient_boosting") {
		t.Fatalf("expected missing component in message: %v", err)
	}
}

func TestDecodeBundleRejectsMismatchedFeatures(t *testing.T) {
	content := strings.Replace(testBundleJSON(t), `"availability_365"
  ]`, `"availability_365",
    "price"
  ]`, 1)
	if _, err := DecodeBundle(strings.NewReader(content)); !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("expected ErrInvalidBundle, got %v", err)
	}
}

func TestDecodeBundleRequiresCategoricalEncoders(t *testing.T) {
	content := `{
		"features": ["neighbourhood_group", "room_type", "latitude", "longitude",
			"minimum_nights", "number_of_reviews", "availability_365"],
		"encoders": {"room_type": {"classes": ["Private room"]}},
		"model": {"type": "linear", "coefficients": [0, 0, 0, 0, 0, 0, 0], "intercept": 10}
	}`
	_, err := DecodeBundle(strings.NewReader(content))
	if !errors.Is(err, ErrInvalidBundle) || !strings.Contains(err.Error(), "neighbourhood_group") {
		t.Fatalf("expected missing encoder error, got %v", err)
	}
}

func TestDecodeBundleLinear(t *testing.T) {
	content := `{
		"name": "linear",
		"features": ["neighbourhood_group", "room_type", "latitude", "longitude",
			"minimum_nights", "number_of_reviews", "availability_365"],
		"encoders": {
			"neighbourhood_group": {"classes": ["Brooklyn", "Manhattan"]},
			"room_type": {"classes": ["Entire home/apt", "Private room"]}
		},
		"requires": ["label_encoder", "linear"],
		"model": {"type": "linear", "coefficients": [40, -60, 0, 0, -1, 0, 0.1], "intercept": 100}
	}`
	bundle, err := DecodeBundle(strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price, err := PredictPrice(bundle, brooklynRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 100 + 40*0 - 60*1 - 1*1 + 0.1*200
	if price != 59 {
		t.Fatalf("expected 59, got %v", price)
	}
}

func TestDecodeBundleRejectsUnknownKeys(t *testing.T) {
	content := strings.Replace(testBundleJSON(t), `"target": "price",`, `"target": "price", "pickle": true,`, 1)
	if _, err := DecodeBundle(strings.NewReader(content)); !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("expected ErrInvalidBundle, got %v", err)
	}
}

const forestBundleJSON = `{
	"name": "forest",
	"features": ["neighbourhood_group", "room_type", "latitude", "longitude",
		"minimum_nights", "number_of_reviews", "availability_365"],
	"encoders": {
		"neighbourhood_group": {"classes": ["Brooklyn", "Manhattan"]},
		"room_type": {"classes": ["Entire home/apt", "Private room"]}
	},
	"requires": ["label_encoder", "random_forest"],
	"model": {"type": "random_forest", "trees": [
		[{"feature_idx": -1, "left_child": -1, "right_child": -1, "value": 10, "is_leaf": true}],
		[
			{"feature_idx": 1, "threshold": 0.5, "left_child": 1, "right_child": 2, "is_leaf": false},
			{"feature_idx": -1, "left_child": -1, "right_child": -1, "value": 20, "is_leaf": true},
			{"feature_idx": -1, "left_child": -1, "right_child": -1, "value": 40, "is_leaf": true}
		]
	]}
}`

func TestDecodeBundleRandomForest(t *testing.T) {
	bundle, err := DecodeBundle(strings.NewReader(forestBundleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := bundle.Info().Estimator; got != TypeRandomForest {
		t.Fatalf("expected %s, got %s", TypeRandomForest, got)
	}

	price, err := PredictPrice(bundle, brooklynRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Private room encodes to 1, so the second tree answers 40: (10 + 40) / 2
	if price != 25 {
		t.Fatalf("expected 25, got %v", price)
	}

	entire := brooklynRecord()
	entire[FieldRoomType] = "Entire home/apt"
	if price, err = PredictPrice(bundle, entire); err != nil || price != 15 {
		t.Fatalf("expected 15, got %v (%v)", price, err)
	}
}

func TestDecodeBundleRandomForestRejectsBadTree(t *testing.T) {
	content := strings.Replace(forestBundleJSON, `"left_child": 1, "right_child": 2`, `"left_child": 1, "right_child": 7`, 1)
	_, err := DecodeBundle(strings.NewReader(content))
	if !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("expected ErrInvalidBundle, got %v", err)
	}
	if !strings.Contains(err.Error(), "tree 1") {
		t.Fatalf("expected failing tree in message: %v", err)
	}

	content = strings.Replace(forestBundleJSON, `"trees": [`, `"trees": [], "unused": [`, 1)
	if _, err := DecodeBundle(strings.NewReader(content)); !errors.Is(err, ErrInvalidBundle) {
		t.Fatalf("expected ErrInvalidBundle for empty forest, got %v", err)
	}
}
