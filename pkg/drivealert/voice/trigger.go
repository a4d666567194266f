package voice

// Trigger is a named voice alert from the closed trigger vocabulary.
type Trigger string

// Application and connectivity triggers.
const (
	ExitApplication        Trigger = "EXIT_APPLICATION"
	AddedPolice            Trigger = "ADDED_POLICE"
	AddingPoliceFailed     Trigger = "ADDING_POLICE_FAILED"
	StopApplication        Trigger = "STOP_APPLICATION"
	OSMDataError           Trigger = "OSM_DATA_ERROR"
	InternetConnFailed     Trigger = "INTERNET_CONN_FAILED"
	Hazard                 Trigger = "HAZARD"
	EmptyDatasetFromServer Trigger = "EMPTY_DATASET_FROM_SERVER"
	LowDownloadDataRate    Trigger = "LOW_DOWNLOAD_DATA_RATE"
)

// GPS triggers.
const (
	GPSOff Trigger = "GPS_OFF"
	GPSLow Trigger = "GPS_LOW"
	GPSOn  Trigger = "GPS_ON"
)

// Speed camera triggers.
const (
	SpeedCamBackup   Trigger = "SPEEDCAM_BACKUP"
	SpeedCamReinsert Trigger = "SPEEDCAM_REINSERT"

	Fix100  Trigger = "FIX_100"
	Fix300  Trigger = "FIX_300"
	Fix500  Trigger = "FIX_500"
	Fix1000 Trigger = "FIX_1000"
	FixNow  Trigger = "FIX_NOW"

	Traffic100  Trigger = "TRAFFIC_100"
	Traffic300  Trigger = "TRAFFIC_300"
	Traffic500  Trigger = "TRAFFIC_500"
	Traffic1000 Trigger = "TRAFFIC_1000"
	TrafficNow  Trigger = "TRAFFIC_NOW"

	Mobile100  Trigger = "MOBILE_100"
	Mobile300  Trigger = "MOBILE_300"
	Mobile500  Trigger = "MOBILE_500"
	Mobile1000 Trigger = "MOBILE_1000"
	MobileNow  Trigger = "MOBILE_NOW"

	Distance100  Trigger = "DISTANCE_100"
	Distance300  Trigger = "DISTANCE_300"
	Distance500  Trigger = "DISTANCE_500"
	Distance1000 Trigger = "DISTANCE_1000"
	DistanceNow  Trigger = "DISTANCE_NOW"

	CameraAhead Trigger = "CAMERA_AHEAD"
)

// Road, POI and detection triggers.
const (
	Water         Trigger = "WATER"
	AccessControl Trigger = "ACCESS_CONTROL"
	POISuccess    Trigger = "POI_SUCCESS"
	POIFailed     Trigger = "POI_FAILED"
	NoRoute       Trigger = "NO_ROUTE"
	RouteStopped  Trigger = "ROUTE_STOPPED"
	POIReached    Trigger = "POI_REACHED"
	AngleMismatch Trigger = "ANGLE_MISMATCH"
	ARHuman       Trigger = "AR_HUMAN"
)

// assets maps every trigger that has a sound. Triggers in the vocabulary
// without an entry (OSM_DATA_ERROR, EMPTY_DATASET_FROM_SERVER) are dropped.
var assets = map[Trigger]string{
	ExitApplication:     "app_exit.wav",
	AddedPolice:         "police_added.wav",
	AddingPoliceFailed:  "police_failed.wav",
	StopApplication:     "app_stopped.wav",
	InternetConnFailed:  "inet_failed.wav",
	Hazard:              "hazard.wav",
	LowDownloadDataRate: "low_download_rate.wav",

	GPSOff: "gps_off.wav",
	GPSLow: "gps_weak.wav",
	GPSOn:  "gps_established.wav",

	SpeedCamBackup:   "camera_backup.wav",
	SpeedCamReinsert: "speed_cam_reinserted.wav",

	Fix100:  "fix_100.wav",
	Fix300:  "fix_300.wav",
	Fix500:  "fix_500.wav",
	Fix1000: "fix_1000.wav",
	FixNow:  "fix_now.wav",

	Traffic100:  "traffic_100.wav",
	Traffic300:  "traffic_300.wav",
	Traffic500:  "traffic_500.wav",
	Traffic1000: "traffic_1000.wav",
	TrafficNow:  "traffic_now.wav",

	Mobile100:  "mobile_100.wav",
	Mobile300:  "mobile_300.wav",
	Mobile500:  "mobile_500.wav",
	Mobile1000: "mobile_1000.wav",
	MobileNow:  "mobile_now.wav",

	Distance100:  "distance_100.wav",
	Distance300:  "distance_300.wav",
	Distance500:  "distance_500.wav",
	Distance1000: "distance_1000.wav",
	DistanceNow:  "distance_now.wav",

	CameraAhead: "camera_ahead.wav",

	Water:         "water.wav",
	AccessControl: "access_control.wav",
	POISuccess:    "poi_success.wav",
	POIFailed:     "poi_failed.wav",
	NoRoute:       "no_route.wav",
	RouteStopped:  "route_stopped.wav",
	POIReached:    "poi_reached.wav",
	AngleMismatch: "angle_mismatch.wav",
	ARHuman:       "human.wav",
}

// silent lists vocabulary triggers that have no sound.
var silent = map[Trigger]struct{}{
	OSMDataError:           {},
	EmptyDatasetFromServer: {},
}

// Lookup returns the asset file name for t. ok is false for unknown triggers
// and for known triggers without a sound.
func Lookup(t Trigger) (asset string, ok bool) {
	asset, ok = assets[t]
	return asset, ok
}

// Known reports whether t belongs to the trigger vocabulary.
func (t Trigger) Known() bool {
	if _, ok := assets[t]; ok {
		return true
	}
	_, ok := silent[t]
	return ok
}
