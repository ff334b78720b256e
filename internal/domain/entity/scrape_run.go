package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ScrapeStatus string

const (
	ScrapeStatusSuccess ScrapeStatus = "success"
	ScrapeStatusWarning ScrapeStatus = "warning"
	ScrapeStatusError   ScrapeStatus = "error"
)

// ScrapeRun is the outcome of one extraction + store cycle.
type ScrapeRun struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Trigger   string       `gorm:"type:varchar(50);not null" json:"trigger"`
	Status    ScrapeStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Message   string       `gorm:"type:text" json:"message"`
	Count     int          `gorm:"not null" json:"count"`
	Metadata  JSON         `gorm:"type:jsonb" json:"metadata,omitempty"`
	StartedAt time.Time    `gorm:"not null" json:"started_at"`
	CreatedAt time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ScrapeRun) TableName() string {
	return "scrape_runs"
}

const (
	ScrapeTriggerSchedule = "schedule"
	ScrapeTriggerManual   = "manual"
)

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}
