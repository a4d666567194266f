// Package sources loads speed cameras from the local database and the cloud
// cache and publishes them on the camera queues.
package sources

import (
	"github.com/randalmurphal/drivealert/pkg/drivealert/markers"
)

// Camera is a stored speed camera. Empty strings mean unknown and are
// rendered with the marker placeholders.
type Camera struct {
	Key                 string  `json:"key"`
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	Name                string  `json:"name,omitempty"`
	Direction           string  `json:"direction,omitempty"`
	MaxSpeed            string  `json:"maxspeed,omitempty"`
	MaxSpeedConditional string  `json:"maxspeed_conditional,omitempty"`
	Description         string  `json:"description,omitempty"`
}

// attributeLen is the full camera attribute tuple length.
const attributeLen = 12

// Attributes returns the camera as an attribute tuple. Unknown fields are nil.
func (c Camera) Attributes() []any {
	attrs := make([]any, attributeLen)
	attrs[0] = c.Lat
	attrs[1] = c.Lon
	for i, v := range []string{c.Name, c.Direction, c.MaxSpeed, c.MaxSpeedConditional, c.Description} {
		if v != "" {
			attrs[7+i] = v
		}
	}
	return attrs
}

// Bounds is a latitude/longitude box, inclusive on all sides.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// toAttributeMap builds one queue batch.
func toAttributeMap(cams []Camera) markers.AttributeMap {
	batch := make(markers.AttributeMap, len(cams))
	for _, c := range cams {
		batch[c.Key] = c.Attributes()
	}
	return batch
}
