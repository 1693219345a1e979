package redis

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/classwatch/internal/storage"
)

const (
	keyPrefix   = "classwatch:"
	studentsSet = keyPrefix + "students"
)

// statusKey returns the hash key holding one student's record
func statusKey(studentID string) string {
	return keyPrefix + "status:" + studentID
}

// formatTimestamp stores time as epoch microseconds so it round-trips exactly
func formatTimestamp(record storage.StatusRecord) string {
	return strconv.FormatInt(record.Timestamp.UnixMicro(), 10)
}

// parseStatusRecord converts a Redis hash to StatusRecord
func parseStatusRecord(data map[string]string) (*storage.StatusRecord, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	micros, err := strconv.ParseInt(data["timestamp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	return &storage.StatusRecord{
		Status:    data["status"],
		Timestamp: time.UnixMicro(micros),
	}, nil
}
