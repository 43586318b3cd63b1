package mqtt

import "github.com/jschlyter/spc2mqtt/internal/spc"

// armCommands maps the command payloads of a Home Assistant alarm control
// panel to target area modes.
var armCommands = map[string]spc.AreaMode{
	"DISARM":    spc.ModeUnset,
	"ARM_HOME":  spc.ModePartSetA,
	"ARM_NIGHT": spc.ModePartSetB,
	"ARM_AWAY":  spc.ModeFullSet,
}

// ParseArmCommand resolves an alarm control panel command payload to the
// area mode it asks for.
func ParseArmCommand(payload string) (spc.AreaMode, bool) {
	mode, ok := armCommands[payload]
	return mode, ok
}

// AreaState maps an area snapshot onto the state strings a Home Assistant
// alarm control panel expects.
func AreaState(snap spc.AreaSnapshot) string {
	if snap.VerifiedAlarm {
		return "triggered"
	}
	switch snap.Mode {
	case spc.ModeUnset:
		return "disarmed"
	case spc.ModePartSetA:
		return "armed_home"
	case spc.ModePartSetB:
		return "armed_night"
	case spc.ModeFullSet:
		return "armed_away"
	default:
		return "unknown"
	}
}

// ZoneState maps a zone snapshot onto a binary sensor payload. A zone is ON
// while its input is open or an alarm is latched.
func ZoneState(snap spc.ZoneSnapshot) string {
	if snap.Alarm || snap.Input == spc.InputOpen {
		return "ON"
	}
	return "OFF"
}
