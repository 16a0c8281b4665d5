package domain

import (
	"fmt"
	"strings"
)

// StatusAvailable is the AFDC status code for an open, operational station.
const StatusAvailable = "E"

// AvailabilityFilter restricts stations by operational status.
type AvailabilityFilter string

const (
	AvailabilityAll         AvailabilityFilter = "all"
	AvailabilityAvailable   AvailabilityFilter = "available"
	AvailabilityUnavailable AvailabilityFilter = "unavailable"
)

// PriceFilter restricts stations by their pricing text.
type PriceFilter string

const (
	PriceAll  PriceFilter = "all"
	PriceFree PriceFilter = "free"
	PricePaid PriceFilter = "paid"
)

// ConnectorFilter restricts stations by connector category. There is no
// filter value for CategoryOther; such stations are only reachable under
// ConnectorAll.
type ConnectorFilter string

const (
	ConnectorAll    ConnectorFilter = "all"
	ConnectorLevel1 ConnectorFilter = "level1"
	ConnectorLevel2 ConnectorFilter = "level2"
	ConnectorDCFast ConnectorFilter = "dcfast"
)

// ParseAvailability validates an availability filter value. The empty string
// means unrestricted.
func ParseAvailability(s string) (AvailabilityFilter, error) {
	switch AvailabilityFilter(s) {
	case "", AvailabilityAll:
		return AvailabilityAll, nil
	case AvailabilityAvailable, AvailabilityUnavailable:
		return AvailabilityFilter(s), nil
	default:
		return "", fmt.Errorf("unknown availability filter %q", s)
	}
}

// ParsePrice validates a price filter value. The empty string means
// unrestricted.
func ParsePrice(s string) (PriceFilter, error) {
	switch PriceFilter(s) {
	case "", PriceAll:
		return PriceAll, nil
	case PriceFree, PricePaid:
		return PriceFilter(s), nil
	default:
		return "", fmt.Errorf("unknown price filter %q", s)
	}
}

// ParseConnectorFilter validates a connector filter value. "other" is not a
// selectable filter. The empty string means unrestricted.
func ParseConnectorFilter(s string) (ConnectorFilter, error) {
	switch ConnectorFilter(s) {
	case "", ConnectorAll:
		return ConnectorAll, nil
	case ConnectorLevel1, ConnectorLevel2, ConnectorDCFast:
		return ConnectorFilter(s), nil
	default:
		return "", fmt.Errorf("unknown connector filter %q", s)
	}
}

// FilterSettings is one complete snapshot of the active filters.
// MaxDistanceMiles of 0 means no distance restriction.
type FilterSettings struct {
	Availability     AvailabilityFilter `json:"availability"`
	Price            PriceFilter        `json:"price"`
	MaxDistanceMiles float64            `json:"max_distance_miles"`
	Connector        ConnectorFilter    `json:"connector"`
}

// DefaultFilterSettings returns the unrestricted settings every session
// starts with.
func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		Availability: AvailabilityAll,
		Price:        PriceAll,
		Connector:    ConnectorAll,
	}
}

// Visible reports whether a single station passes every active filter.
// The predicates are independent and commutative; evaluation order only
// matters for short-circuiting.
func Visible(st Station, settings FilterSettings) bool {
	if !availabilityMatch(st.Properties.Status, settings.Availability) {
		return false
	}
	if !priceMatch(st.Properties.Pricing, settings.Price) {
		return false
	}
	if settings.MaxDistanceMiles > 0 {
		// Unknown distance fails closed: the user asked for a distance
		// bound and this station's distance has not been computed.
		if st.DistanceMiles == nil || *st.DistanceMiles > settings.MaxDistanceMiles {
			return false
		}
	}
	if settings.Connector != ConnectorAll && Classify(st.Properties) != Category(settings.Connector) {
		return false
	}
	return true
}

// ComputeVisibility returns a decision for every station in the collection,
// keyed by station ID. Pure: identical inputs always yield identical output.
func ComputeVisibility(stations []Station, settings FilterSettings) map[int]bool {
	decisions := make(map[int]bool, len(stations))
	for i := range stations {
		decisions[stations[i].ID] = Visible(stations[i], settings)
	}
	return decisions
}

// availabilityMatch applies the status predicate. An absent status code is
// not StatusAvailable, so it is hidden under "available" and visible under
// "unavailable".
func availabilityMatch(status string, f AvailabilityFilter) bool {
	switch f {
	case AvailabilityAvailable:
		return status == StatusAvailable
	case AvailabilityUnavailable:
		return status != StatusAvailable
	default:
		return true
	}
}

// priceMatch applies the pricing predicate. Empty pricing text matches
// neither "free" nor "paid".
func priceMatch(pricing string, f PriceFilter) bool {
	switch f {
	case PriceFree:
		return strings.Contains(strings.ToLower(pricing), "free")
	case PricePaid:
		return pricing != "" && !strings.Contains(strings.ToLower(pricing), "free")
	default:
		return true
	}
}
