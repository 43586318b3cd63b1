package spc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAreaFromRecord(t *testing.T) {
	rec := gjson.Parse(`{"id":"1","name":"House ","mode":"3",
		"last_set_time":"1598887999","last_set_user_name":"Pelle",
		"last_unset_time":"1598800000","last_unset_user_name":"Lisa"}`)
	a := newArea(rec)
	require.NotNil(t, a)

	assert.Equal(t, "1", a.ID())
	assert.Equal(t, "House", a.Name())
	assert.Equal(t, ModeFullSet, a.Mode())
	assert.Equal(t, time.Unix(1598887999, 0).UTC(), a.LastChanged())
	assert.Equal(t, "Pelle", a.LastChangedBy())
	assert.False(t, a.VerifiedAlarm())
	assert.Equal(t, "1: House (Full Set)", a.String())
}

func TestAreaUnsetUsesUnsetTimestamps(t *testing.T) {
	rec := gjson.Parse(`{"id":"1","name":"House","mode":"0",
		"last_set_time":"1598887999","last_set_user_name":"Pelle",
		"last_unset_time":"1598900000","last_unset_user_name":"Lisa"}`)
	a := newArea(rec)
	require.NotNil(t, a)

	assert.Equal(t, ModeUnset, a.Mode())
	assert.Equal(t, time.Unix(1598900000, 0).UTC(), a.LastChanged())
	assert.Equal(t, "Lisa", a.LastChangedBy())
}

func TestAreaVerifiedAlarm(t *testing.T) {
	a := newArea(gjson.Parse(`{"id":"1","name":"House","mode":"3"}`))
	require.NotNil(t, a)

	a.update(gjson.Parse(`{"id":"1","name":"House","mode":"3"}`), "BV")
	assert.True(t, a.VerifiedAlarm())

	// any following update clears the flag again
	a.update(gjson.Parse(`{"id":"1","name":"House","mode":"0"}`), "OG")
	assert.False(t, a.VerifiedAlarm())
}

func TestAreaIgnoresAbsentRecord(t *testing.T) {
	a := newArea(gjson.Parse(`{"id":"1","name":"House","mode":"3"}`))
	require.NotNil(t, a)

	a.update(gjson.Result{}, "BV")
	assert.Equal(t, ModeFullSet, a.Mode())
	assert.False(t, a.VerifiedAlarm())
}

func TestAreaRequiresID(t *testing.T) {
	assert.Nil(t, newArea(gjson.Parse(`{"name":"House","mode":"3"}`)))
}

func TestZoneFromRecord(t *testing.T) {
	a := newArea(gjson.Parse(`{"id":"1","name":"House","mode":"0"}`))
	z := newZone(a, gjson.Parse(`{"id":"3","zone_name":"Skafferi ","area":"1","input":"1","status":"0"}`))
	require.NotNil(t, z)

	assert.Equal(t, "3", z.ID())
	assert.Equal(t, "Skafferi", z.Name())
	assert.Same(t, a, z.Area())
	assert.Equal(t, InputOpen, z.Input())
	assert.Equal(t, StatusOK, z.Status())
	assert.False(t, z.Alarm())
	assert.Equal(t, "3: Skafferi (input Open, status OK)", z.String())
}

func TestZoneAlarmLatch(t *testing.T) {
	a := newArea(gjson.Parse(`{"id":"1","name":"House","mode":"3"}`))
	z := newZone(a, gjson.Parse(`{"id":"3","zone_name":"Skafferi","area":"1","input":"0","status":"0"}`))
	require.NotNil(t, z)

	rec := gjson.Parse(`{"id":"3","zone_name":"Skafferi","area":"1","input":"1","status":"5"}`)
	z.update(rec, "BA")
	assert.True(t, z.Alarm())

	// unrelated codes leave the latch alone
	z.update(rec, "ZO")
	assert.True(t, z.Alarm())

	z.update(rec, "BR")
	assert.False(t, z.Alarm())

	z.update(rec, "TA")
	assert.True(t, z.Alarm())
	z.update(rec, "TR")
	assert.False(t, z.Alarm())
}

func TestZoneStateSnapshot(t *testing.T) {
	a := newArea(gjson.Parse(`{"id":"1","name":"House","mode":"3"}`))
	z := newZone(a, gjson.Parse(`{"id":"3","zone_name":"Skafferi","area":"1","input":"1","status":"5"}`))
	require.NotNil(t, z)
	z.update(gjson.Parse(`{"id":"3","zone_name":"Skafferi","area":"1","input":"1","status":"5"}`), "BA")

	assert.Equal(t, ZoneSnapshot{
		ID:     "3",
		Name:   "Skafferi",
		AreaID: "1",
		Input:  InputOpen,
		Status: StatusAlarm,
		Alarm:  true,
	}, z.State())
}

func TestParsePanel(t *testing.T) {
	p := parsePanel(gjson.Parse(`{"type":"SPC4300","variant":"SPC4000","version":"3.8.5","sn":"111111"}`))
	require.NotNil(t, p)
	assert.Equal(t, "SPC4300", p.Type)
	assert.Equal(t, "SPC4000", p.Variant)
	assert.Equal(t, "3.8.5", p.Version)
	assert.Equal(t, "111111", p.SerialNumber)
	assert.Equal(t, "SPC4300 SPC4000 (firmware 3.8.5, S/N 111111)", p.String())

	assert.Nil(t, parsePanel(gjson.Result{}))
}

func TestParseAreaModeBounds(t *testing.T) {
	assert.Equal(t, ModeUnset, parseAreaMode("0"))
	assert.Equal(t, ModePartSetA, parseAreaMode("1"))
	assert.Equal(t, ModePartSetB, parseAreaMode("2"))
	assert.Equal(t, ModeFullSet, parseAreaMode("3"))
	assert.Equal(t, ModeUnknown, parseAreaMode("4"))
	assert.Equal(t, ModeUnknown, parseAreaMode("-1"))
	assert.Equal(t, ModeUnknown, parseAreaMode("abc"))
	assert.Equal(t, ModeUnknown, parseAreaMode(""))
}

func TestParseZoneFields(t *testing.T) {
	assert.Equal(t, InputOffline, parseZoneInput("7"))
	assert.Equal(t, InputUnknown, parseZoneInput("8"))
	assert.Equal(t, StatusAlarm, parseZoneStatus("5"))
	assert.Equal(t, StatusUnknown, parseZoneStatus("6"))
	assert.Equal(t, StatusUnknown, parseZoneStatus(""))
}

func TestAreaModeCommands(t *testing.T) {
	assert.Equal(t, map[AreaMode]string{
		ModeUnset:    "unset",
		ModePartSetA: "set_a",
		ModePartSetB: "set_b",
		ModeFullSet:  "set",
	}, areaModeCommands)
}
