package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

const metricPrefix = "bas_"

var (
	registerOnce sync.Once

	scansTotal  *prometheus.CounterVec
	alarmsTotal *prometheus.CounterVec

	zoneTemp      *prometheus.GaugeVec
	outdoorTemp   *prometheus.GaugeVec
	dischargeTemp *prometheus.GaugeVec
	co2PPM        *prometheus.GaugeVec
	damperPos     *prometheus.GaugeVec
	outputOn      *prometheus.GaugeVec
)

// Init registers the controller metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		scansTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "scans_total",
				Help: "Completed control scans by unit",
			},
			[]string{"unit"},
		)
		alarmsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_events_total",
				Help: "Alarm lifecycle events by code and transition",
			},
			[]string{"code", "event"},
		)
		zoneTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "zone_temp_fahrenheit",
				Help: "Zone temperature",
			},
			[]string{"unit"},
		)
		outdoorTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "outdoor_temp_fahrenheit",
				Help: "Outdoor air temperature",
			},
			[]string{"unit"},
		)
		dischargeTemp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "discharge_temp_fahrenheit",
				Help: "Discharge air temperature",
			},
			[]string{"unit"},
		)
		co2PPM = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "co2_ppm",
				Help: "Zone CO2 concentration, absent for units without the sensor",
			},
			[]string{"unit"},
		)
		damperPos = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "damper_position_percent",
				Help: "Commanded outdoor-air damper position",
			},
			[]string{"unit"},
		)
		outputOn = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "output_on",
				Help: "Commanded binary output state (1 on, 0 off)",
			},
			[]string{"unit", "output"},
		)

		prometheus.MustRegister(
			scansTotal, alarmsTotal,
			zoneTemp, outdoorTemp, dischargeTemp, co2PPM,
			damperPos, outputOn,
		)
	})
}

// ObserveScan records one completed scan's readings and outputs.
func ObserveScan(unitID string, snap control.Snapshot, out control.Outputs) {
	if scansTotal == nil {
		return
	}
	scansTotal.WithLabelValues(unitID).Inc()
	zoneTemp.WithLabelValues(unitID).Set(snap.ZoneTemp)
	outdoorTemp.WithLabelValues(unitID).Set(snap.OutdoorTemp)
	dischargeTemp.WithLabelValues(unitID).Set(snap.DischargeTemp)
	if snap.CO2PPM != nil {
		co2PPM.WithLabelValues(unitID).Set(*snap.CO2PPM)
	}
	damperPos.WithLabelValues(unitID).Set(out.Damper)
	outputOn.WithLabelValues(unitID, "fan").Set(boolGauge(out.Fan))
	outputOn.WithLabelValues(unitID, "compressor").Set(boolGauge(out.Compressor))
	outputOn.WithLabelValues(unitID, "heat").Set(boolGauge(out.Heat))
}

// AlarmRaised counts a raise transition for the given alarm code.
func AlarmRaised(code string) {
	if alarmsTotal != nil {
		alarmsTotal.WithLabelValues(code, "raised").Inc()
	}
}

// AlarmCleared counts a clear transition for the given alarm code.
func AlarmCleared(code string) {
	if alarmsTotal != nil {
		alarmsTotal.WithLabelValues(code, "cleared").Inc()
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
