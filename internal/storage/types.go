package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusRecord is the last status reported for a student.
type StatusRecord struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type statusRecordJSON struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// MarshalJSON encodes the timestamp as fractional seconds since the epoch.
func (r StatusRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusRecordJSON{
		Status:    r.Status,
		Timestamp: EpochSeconds(r.Timestamp),
	})
}

// UnmarshalJSON decodes a record with an epoch-seconds timestamp.
func (r *StatusRecord) UnmarshalJSON(data []byte) error {
	var raw statusRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Timestamp < 0 {
		return fmt.Errorf("invalid timestamp: %v", raw.Timestamp)
	}
	r.Status = raw.Status
	r.Timestamp = FromEpochSeconds(raw.Timestamp)
	return nil
}

// EpochSeconds converts t to seconds since the Unix epoch with sub-second precision.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromEpochSeconds is the inverse of EpochSeconds (to microsecond precision).
func FromEpochSeconds(s float64) time.Time {
	return time.UnixMicro(int64(s * 1e6))
}
