package spc

import "fmt"

// SIA codes reported on the event stream, split by the kind of entity the
// accompanying address refers to. CL and OP carry a user id instead of an
// area id and are handled separately.
var (
	// AreaSIACodes are the codes whose address is an area id.
	AreaSIACodes = []string{"BV", "CG", "NL", "OG"}

	// ZoneSIACodes are the codes whose address is a zone id.
	ZoneSIACodes = []string{"BA", "BB", "BR", "BU", "TA", "TR", "ZC", "ZD", "ZO", "ZX"}

	// UserModeSIACodes are the set/unset reports. Some firmware versions put
	// the user id in the address field, so these refresh every area instead
	// of resolving the address.
	UserModeSIACodes = []string{"CL", "OP"}
)

var (
	areaCodes     = codeSet(AreaSIACodes)
	zoneCodes     = codeSet(ZoneSIACodes)
	userModeCodes = codeSet(UserModeSIACodes)
)

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

var siaDescriptions = map[string]string{
	"BA": "Burglary Alarm",
	"BB": "Burglary Bypass",
	"BC": "Burglary Cancel",
	"BR": "Burglary Restore",
	"BU": "Burglary Unbypass",
	"BV": "Burglary Verified",
	"CG": "Close Area",
	"CL": "Closing Report",
	"FA": "Fire Alarm",
	"FR": "Fire Restore",
	"NL": "Perimeter Armed",
	"OG": "Open Area",
	"OP": "Opening Report",
	"PA": "Panic Alarm",
	"PR": "Panic Restore",
	"RP": "Automatic Test",
	"TA": "Tamper Alarm",
	"TR": "Tamper Restore",
	"ZC": "Zone Closed",
	"ZD": "Zone Disconnected",
	"ZO": "Zone Open",
	"ZX": "Zone Shorted",
}

// DescribeSIACode returns the human readable name of a SIA code for log
// output.
func DescribeSIACode(code string) string {
	if description, ok := siaDescriptions[code]; ok {
		return description
	}
	return fmt.Sprintf("Unknown SIA code %q", code)
}
