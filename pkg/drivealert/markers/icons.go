package markers

import "strings"

// Icon names a marker image.
type Icon string

// Marker icons.
const (
	IconFix          Icon = "fix"
	IconTraffic      Icon = "traffic"
	IconDistance     Icon = "distance"
	IconMobile       Icon = "mobile"
	IconConstruction Icon = "construction"
	IconHospital     Icon = "hospital"
	IconFuel         Icon = "fuel"
	IconUndefined    Icon = "undefined"
	IconCar          Icon = "car"
)

// IconFor picks the camera icon from the key's category prefix.
func IconFor(key string) Icon {
	switch {
	case strings.HasPrefix(key, "FIX"):
		return IconFix
	case strings.HasPrefix(key, "TRAFFIC"):
		return IconTraffic
	case strings.HasPrefix(key, "DISTANCE"):
		return IconDistance
	default:
		return IconMobile
	}
}

// POIIcon picks the POI icon from its amenity tag.
func POIIcon(amenity string) Icon {
	switch amenity {
	case "hospital":
		return IconHospital
	case "fuel":
		return IconFuel
	default:
		return IconUndefined
	}
}
