package domain

// Category is the single connector classification derived from port counts.
type Category string

// Connector categories, fastest first.
const (
	CategoryDCFast Category = "dcfast"
	CategoryLevel2 Category = "level2"
	CategoryLevel1 Category = "level1"
	CategoryOther  Category = "other"
)

// Classify returns the connector category for a station's port counts.
// A station with ports in multiple tiers takes the fastest tier it offers,
// so the order of the checks matters. Pure and total: missing or malformed
// counts have already decoded to zero and land in CategoryOther.
func Classify(props StationProperties) Category {
	switch {
	case props.DCFastPorts > 0:
		return CategoryDCFast
	case props.Level2Ports > 0:
		return CategoryLevel2
	case props.Level1Ports > 0:
		return CategoryLevel1
	default:
		return CategoryOther
	}
}
