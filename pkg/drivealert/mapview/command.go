package mapview

import (
	"fmt"
)

// Sentinel strings accepted by ParseCommand.
const (
	SentinelExit   = "EXIT"
	SentinelUpdate = "UPDATE"
)

// CommandKind selects what the router does with a map-update item.
type CommandKind int

// Command kinds.
const (
	CommandUpdate CommandKind = iota
	CommandExit
	CommandRemoveCamera
	CommandRemoveConstructionAreas
	CommandReset
)

// String returns the kind name.
func (k CommandKind) String() string {
	switch k {
	case CommandUpdate:
		return "update"
	case CommandExit:
		return "exit"
	case CommandRemoveCamera:
		return "remove_camera"
	case CommandRemoveConstructionAreas:
		return "remove_construction_areas"
	case CommandReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Command is one item on the map-update queue. Lat and Lon are only used by
// CommandRemoveCamera.
type Command struct {
	Kind CommandKind
	Lat  float64
	Lon  float64
}

// Update requests a full redraw.
func Update() Command { return Command{Kind: CommandUpdate} }

// Exit ends the current iteration without drawing.
func Exit() Command { return Command{Kind: CommandExit} }

// RemoveCamera removes the speed camera marker at lat, lon.
func RemoveCamera(lat, lon float64) Command {
	return Command{Kind: CommandRemoveCamera, Lat: lat, Lon: lon}
}

// RemoveConstructionAreas removes every construction area marker.
func RemoveConstructionAreas() Command {
	return Command{Kind: CommandRemoveConstructionAreas}
}

// Reset clears every marker from the map.
func Reset() Command { return Command{Kind: CommandReset} }

// ParseCommand converts a sentinel string to a Command.
func ParseCommand(s string) (Command, error) {
	switch s {
	case SentinelExit:
		return Exit(), nil
	case SentinelUpdate:
		return Update(), nil
	default:
		return Command{}, fmt.Errorf("unknown map command %q", s)
	}
}
