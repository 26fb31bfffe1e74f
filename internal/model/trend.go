package model

import "time"

// TrendSample is one decimated record of a unit's sensor readings and
// commanded outputs, appended by the scan loop on its trend interval.
type TrendSample struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UnitID        string    `gorm:"index;size:64;not null" json:"unit_id"`
	At            time.Time `gorm:"index;not null" json:"at"`
	ZoneTemp      float64   `gorm:"not null" json:"zone_temp"`
	OutdoorTemp   float64   `gorm:"not null" json:"outdoor_temp"`
	DischargeTemp float64   `gorm:"not null" json:"discharge_temp"`
	CO2PPM        *float64  `json:"co2_ppm"`
	Fan           bool      `gorm:"not null" json:"fan"`
	Compressor    bool      `gorm:"not null" json:"compressor"`
	Heat          bool      `gorm:"not null" json:"heat"`
	Damper        float64   `gorm:"not null" json:"damper"`
	State         string    `gorm:"size:32;not null" json:"state"`
}
