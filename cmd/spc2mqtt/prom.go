package main

import (
	"github.com/jschlyter/spc2mqtt/internal/spc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var areaModeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "spc2mqtt",
	Subsystem: "panel",
	Name:      "area_mode",
	Help:      "Arming mode per area: 0 unset, 1 part set A, 2 part set B, 3 full set, -1 unknown.",
}, []string{"area"})

var areaAlarmGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "spc2mqtt",
	Subsystem: "panel",
	Name:      "area_verified_alarm",
	Help:      "Whether the area reported a verified burglary alarm.",
}, []string{"area"})

var zoneOpenGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "spc2mqtt",
	Subsystem: "panel",
	Name:      "zone_open",
	Help:      "Whether the zone input is open.",
}, []string{"zone"})

var zoneAlarmGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "spc2mqtt",
	Subsystem: "panel",
	Name:      "zone_alarm",
	Help:      "Whether the zone has an unrestored alarm.",
}, []string{"zone"})

var updateCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "spc2mqtt",
	Subsystem: "stream",
	Name:      "updates_total",
	Help:      "Entity updates received from the event stream.",
})

func recordMetrics(entity spc.Entity) {
	updateCounter.Inc()
	switch e := entity.(type) {
	case *spc.Area:
		primeAreaMetrics(e)
	case *spc.Zone:
		primeZoneMetrics(e)
	}
}

func primeAreaMetrics(area *spc.Area) {
	snap := area.State()
	areaModeGauge.WithLabelValues(snap.ID).Set(float64(snap.Mode))
	areaAlarmGauge.WithLabelValues(snap.ID).Set(boolToFloat(snap.VerifiedAlarm))
}

func primeZoneMetrics(zone *spc.Zone) {
	snap := zone.State()
	zoneOpenGauge.WithLabelValues(snap.ID).Set(boolToFloat(snap.Input == spc.InputOpen))
	zoneAlarmGauge.WithLabelValues(snap.ID).Set(boolToFloat(snap.Alarm))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
