package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 point. GeoJSON orders coordinates [lon, lat].
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PortCount is a lenient port-count value. AFDC exports encode counts as JSON
// numbers, numeric strings, empty strings, or omit the field; anything that
// does not parse as a number decodes to zero. Decoding is total and never
// returns an error.
type PortCount int

func (p *PortCount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		*p = 0
		return nil
	}
	*p = PortCount(v)
	return nil
}

// StationProperties is the AFDC attribute bag carried by each feature.
// Field names match AFDC column names; see the package documentation.
type StationProperties struct {
	StationName    string    `json:"Station_Name"`
	Address        string    `json:"Address"`
	PhoneNumber    string    `json:"Phone_Number"`
	City           string    `json:"City"`
	Pricing        string    `json:"EV_Pricing"`
	ConnectorTypes string    `json:"EV_Connector_Types"`
	Status         string    `json:"Current_Status"`
	Level1Ports    PortCount `json:"EV_Level1_EVSE_Ports"`
	Level2Ports    PortCount `json:"EV_Level2_EVSE_Ports"`
	DCFastPorts    PortCount `json:"EV_DC_Fast_Ports"`
}

// Station is one charging location. The ID is assigned from feature order at
// load time and is stable for the lifetime of the session; every downstream
// representation of the station is keyed by it.
//
// DistanceMiles and DistanceOrigin are set together by [AnnotateDistances]:
// the distance is only meaningful relative to the origin it was computed
// from, so the origin is stored alongside it rather than left implicit.
type Station struct {
	ID             int               `json:"id"`
	Geometry       *Coordinate       `json:"geometry,omitempty"`
	Properties     StationProperties `json:"properties"`
	DistanceMiles  *float64          `json:"distance_miles,omitempty"`
	DistanceOrigin *Coordinate       `json:"distance_origin,omitempty"`
}

// StatusUpdate is a live change to one station's operational status, as
// published on the status topic by the charging network integration.
type StatusUpdate struct {
	StationID int    `json:"station_id"`
	Status    string `json:"status"`
}

// ParseStatusUpdate deserializes a status-update message value.
func ParseStatusUpdate(data []byte) (StatusUpdate, error) {
	var u StatusUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return StatusUpdate{}, fmt.Errorf("parse status update: %w", err)
	}
	if u.StationID < 0 {
		return StatusUpdate{}, fmt.Errorf("parse status update: negative station_id %d", u.StationID)
	}
	if u.Status == "" {
		return StatusUpdate{}, fmt.Errorf("parse status update: empty status")
	}
	return u, nil
}
