package models

// StatusUncontacted is the only directory status meaning nobody has reached the household yet.
const StatusUncontacted = 1

// Target is a directory record for a location awaiting a registration determination.
//
//	{"id": 21426948, "status": 7, "count": 21, "latLng": "33.011543,-96.85161"}
type Target struct {
	ID     int    `json:"id"`     // ID is the directory identifier of the target.
	Status int    `json:"status"` // Status is the contact state code.
	Count  int    `json:"count"`  // Count is the number of households at the location.
	LatLng string `json:"latLng"` // LatLng is the raw "lat,lng" location string.
}

// NeedsApplication reports whether the target has never been contacted.
func (t Target) NeedsApplication() bool {
	return t.Status == StatusUncontacted
}

// IsSingleHousehold reports whether exactly one household lives at the target.
func (t Target) IsSingleHousehold() bool {
	return t.Count == 1
}
