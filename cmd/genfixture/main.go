// Command genfixture trims a full AFDC alternative-fuel-station GeoJSON
// export down to a test fixture. It drops every property the locator does not
// read and can restrict the output to one state or cap the feature count, so
// fixtures stay small enough to commit.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -in alt_fuel_stations.geojson \
//	  -out internal/geojson/testdata/stations.geojson \
//	  -state WA -limit 25
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

// keptProperties are the AFDC property names the locator reads. Everything
// else in the export is dead weight for a fixture.
var keptProperties = []string{
	"Station_Name",
	"Address",
	"Phone_Number",
	"City",
	"State",
	"EV_Pricing",
	"EV_Connector_Types",
	"Current_Status",
	"EV_Level1_EVSE_Ports",
	"EV_Level2_EVSE_Ports",
	"EV_DC_Fast_Ports",
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to the full AFDC GeoJSON export")
	out := flag.String("out", "", "output path for the trimmed fixture")
	state := flag.String("state", "", "keep only stations in this state (optional)")
	limit := flag.Int("limit", 0, "keep at most this many features, 0 for all")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", *in, err)
	}
	if fc.Type != "FeatureCollection" {
		return fmt.Errorf("%s: expected a FeatureCollection, got %q", *in, fc.Type)
	}

	trimmed := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, f := range fc.Features {
		if *state != "" && f.Properties["State"] != *state {
			continue
		}
		trimmed.Features = append(trimmed.Features, feature{
			Type:       f.Type,
			Geometry:   f.Geometry,
			Properties: trimProperties(f.Properties),
		})
		if *limit > 0 && len(trimmed.Features) >= *limit {
			break
		}
	}

	log.Printf("kept %d of %d features", len(trimmed.Features), len(fc.Features))

	encoded, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding fixture: %w", err)
	}
	if err := os.WriteFile(*out, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	return nil
}

func trimProperties(props map[string]any) map[string]any {
	trimmed := make(map[string]any, len(keptProperties))
	for _, key := range keptProperties {
		if v, ok := props[key]; ok && v != nil {
			trimmed[key] = v
		}
	}
	return trimmed
}
