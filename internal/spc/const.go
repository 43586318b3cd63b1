package spc

import (
	"fmt"
	"strconv"
)

// Resource identifies a kind of panel resource. The value doubles as the
// endpoint path segment under /spc/.
type Resource string

const (
	ResourcePanel Resource = "panel"
	ResourceArea  Resource = "area"
	ResourceZone  Resource = "zone"
)

// AreaMode is the arming state of an area. The numeric values are the ones
// the gateway reports in area records.
type AreaMode int

const (
	ModeUnset AreaMode = iota
	ModePartSetA
	ModePartSetB
	ModeFullSet
)

// ModeUnknown is used when the gateway reports a mode outside the documented
// range.
const ModeUnknown AreaMode = -1

func (m AreaMode) String() string {
	switch m {
	case ModeUnset:
		return "Unset"
	case ModePartSetA:
		return "Part Set A"
	case ModePartSetB:
		return "Part Set B"
	case ModeFullSet:
		return "Full Set"
	case ModeUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown AreaMode(%d)", int(m))
	}
}

func parseAreaMode(s string) AreaMode {
	n, err := strconv.Atoi(s)
	if err != nil || n < int(ModeUnset) || n > int(ModeFullSet) {
		return ModeUnknown
	}
	return AreaMode(n)
}

// areaModeCommands maps a target mode to the command token the control
// endpoint expects.
var areaModeCommands = map[AreaMode]string{
	ModeUnset:    "unset",
	ModePartSetA: "set_a",
	ModePartSetB: "set_b",
	ModeFullSet:  "set",
}

// ZoneInput is the physical contact state of a zone input.
type ZoneInput int

const (
	InputClosed ZoneInput = iota
	InputOpen
	InputShort
	InputDisconnected
	InputPIRMasked
	InputDCSubstitution
	InputSensorMissing
	InputOffline
)

const InputUnknown ZoneInput = -1

func (i ZoneInput) String() string {
	switch i {
	case InputClosed:
		return "Closed"
	case InputOpen:
		return "Open"
	case InputShort:
		return "Short"
	case InputDisconnected:
		return "Disconnected"
	case InputPIRMasked:
		return "PIR Masked"
	case InputDCSubstitution:
		return "DC Substitution"
	case InputSensorMissing:
		return "Sensor Missing"
	case InputOffline:
		return "Offline"
	case InputUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown ZoneInput(%d)", int(i))
	}
}

func parseZoneInput(s string) ZoneInput {
	n, err := strconv.Atoi(s)
	if err != nil || n < int(InputClosed) || n > int(InputOffline) {
		return InputUnknown
	}
	return ZoneInput(n)
}

// ZoneStatus is the processing state of a zone.
type ZoneStatus int

const (
	StatusOK ZoneStatus = iota
	StatusInhibit
	StatusIsolate
	StatusSoak
	StatusTamper
	StatusAlarm
)

const StatusUnknown ZoneStatus = -1

func (s ZoneStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInhibit:
		return "Inhibited"
	case StatusIsolate:
		return "Isolated"
	case StatusSoak:
		return "Soak Test"
	case StatusTamper:
		return "Tamper"
	case StatusAlarm:
		return "Alarm"
	case StatusUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown ZoneStatus(%d)", int(s))
	}
}

func parseZoneStatus(s string) ZoneStatus {
	n, err := strconv.Atoi(s)
	if err != nil || n < int(StatusOK) || n > int(StatusAlarm) {
		return StatusUnknown
	}
	return ZoneStatus(n)
}
