// Package domain models EV charging station data and the filter rules that
// decide which stations are visible to a user.
//
// # Data Source
//
// Station records follow the NREL Alternative Fuels Data Center (AFDC) export
// format, distributed as a GeoJSON FeatureCollection of point features. The
// property names below are AFDC column names and are preserved verbatim in the
// JSON encoding:
//
//	Station_Name, Address, Phone_Number, City   — descriptive fields
//	EV_Pricing                                  — free-text pricing description
//	EV_Connector_Types                          — free-text connector summary
//	Current_Status                              — operational status code
//	EV_Level1_EVSE_Ports                        — Level 1 (120V) port count
//	EV_Level2_EVSE_Ports                        — Level 2 (240V) port count
//	EV_DC_Fast_Ports                            — DC fast charging port count
//
// # AFDC Conventions
//
// Status codes:
//
//	"E" means available (open and operational). Other codes such as "P"
//	(planned) and "T" (temporarily unavailable) all count as not available.
//	An absent status is treated as not available.
//
// Port counts:
//
//	Exports encode counts inconsistently: JSON numbers, numeric strings,
//	empty strings, or the field is omitted entirely. Anything that does not
//	parse as a number is treated as zero ports. See [PortCount].
//
// Pricing:
//
//	Free text, e.g. "Free", "FREE for members", "$2/hr". A station is
//	considered free when the text contains "free" case-insensitively, and
//	paid when the text is non-empty and does not contain "free". An empty
//	pricing string is neither free nor paid.
//
// # Connector Categories
//
// A station is assigned exactly one category from its port counts, taking the
// fastest tier it offers: any DC fast ports make it "dcfast", otherwise any
// Level 2 ports make it "level2", otherwise any Level 1 ports make it
// "level1", otherwise "other". See [Classify].
//
// # Visibility
//
// [ComputeVisibility] produces a decision for every station by AND-ing four
// independent predicates (availability, price, distance, connector). Missing
// attributes never fail the pass; each predicate has a defined default for
// absent data. Affirmative filters (available, free, paid, bounded distance)
// fail toward hidden, the exclusionary unavailable filter fails toward
// visible.
package domain
