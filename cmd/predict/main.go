// Command predict scores one listing against the model bundle on disk and prints the nightly price.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"airbnbprice/estimate"
	"airbnbprice/logging"
	"airbnbprice/ml"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type output struct {
	Price    float64           `json:"price"`
	Listing  ml.Listing        `json:"listing"`
	Estimate estimate.Estimate `json:"estimate"`
	Model    ml.BundleInfo     `json:"model"`
}

func run(args []string, stdout, stderr io.Writer) int {
	example := ml.ExampleListing()

	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelDir := fs.String("model-dir", "models", "directory holding the model bundle")
	modelPrefix := fs.String("model-prefix", ml.DefaultBundlePrefix, "file name prefix of the bundle")
	modelFile := fs.String("model-file", "", "explicit bundle path, overrides -model-dir and -model-prefix")
	neighbourhood := fs.String("neighbourhood-group", example.NeighbourhoodGroup, "neighbourhood group")
	roomType := fs.String("room-type", example.RoomType, "room type")
	latitude := fs.Float64("latitude", example.Latitude, "latitude")
	longitude := fs.Float64("longitude", example.Longitude, "longitude")
	minimumNights := fs.Int("minimum-nights", example.MinimumNights, "minimum nights")
	reviews := fs.Int("number-of-reviews", example.NumberOfReviews, "number of reviews")
	availability := fs.Int("availability", example.Availability365, "days available per year")
	asJSON := fs.Bool("json", false, "print price, derived figures and model info as JSON")
	logLevel := fs.String("log-level", "warn", "log level for diagnostics on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, _, err := logging.NewWriter(logging.Config{Level: *logLevel, Format: "console"}, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	var bundle *ml.Bundle
	if *modelFile != "" {
		bundle, err = ml.LoadBundleFile(*modelFile)
	} else {
		bundle, err = ml.LoadBundle(*modelDir, *modelPrefix)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger.Debug("bundle loaded", zap.String("name", bundle.Name), zap.String("estimator", bundle.Estimator().Type()))

	record := ml.Listing{
		NeighbourhoodGroup: *neighbourhood,
		RoomType:           *roomType,
		Latitude:           *latitude,
		Longitude:          *longitude,
		MinimumNights:      *minimumNights,
		NumberOfReviews:    *reviews,
		Availability365:    *availability,
	}.Record()

	listing, price, err := ml.PredictListing(bundle, record)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if !*asJSON {
		fmt.Fprintf(stdout, "Predicted price: %.2f\n", price)
		return 0
	}
	data, err := json.MarshalIndent(output{
		Price:    price,
		Listing:  listing,
		Estimate: estimate.Build(price, listing),
		Model:    bundle.Info(),
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(data))
	return 0
}
