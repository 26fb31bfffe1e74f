package model

import "time"

// Unit represents one packaged rooftop unit under control. Units are
// declared in the configuration file and synced into the database at boot.
type Unit struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	ScheduleName string    `gorm:"size:128;not null" json:"schedule"`
	HasCO2Sensor bool      `gorm:"not null" json:"has_co2_sensor"`
	ModbusAddr   int       `gorm:"not null" json:"modbus_addr"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
