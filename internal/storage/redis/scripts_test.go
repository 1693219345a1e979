package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a miniredis instance for testing Lua scripts
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestPutStatusScript(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	defer mr.Close()

	ctx := context.Background()

	tests := []struct {
		name      string
		studentID string
		status    string
		timestamp string
	}{
		{name: "first report", studentID: "leona", status: "Engaged", timestamp: "1700000000000000"},
		{name: "overwrite report", studentID: "leona", status: "Zoned Out", timestamp: "1700000003000000"},
		{name: "second student", studentID: "marcus", status: "Engaged", timestamp: "1700000004000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := statusKey(tt.studentID)

			result := client.Eval(ctx, putStatusScript, []string{key, studentsSet}, tt.studentID, tt.status, tt.timestamp)
			if result.Err() != nil {
				t.Fatalf("Script execution failed: %v", result.Err())
			}

			data, err := client.HGetAll(ctx, key).Result()
			if err != nil {
				t.Fatalf("HGetAll failed: %v", err)
			}
			if data["status"] != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, data["status"])
			}
			if data["timestamp"] != tt.timestamp {
				t.Errorf("Expected timestamp %s, got %s", tt.timestamp, data["timestamp"])
			}

			isMember, err := client.SIsMember(ctx, studentsSet, tt.studentID).Result()
			if err != nil {
				t.Fatalf("SIsMember failed: %v", err)
			}
			if !isMember {
				t.Errorf("Expected %s in students set", tt.studentID)
			}
		})
	}

	count, err := client.SCard(ctx, studentsSet).Result()
	if err != nil {
		t.Fatalf("SCard failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 indexed students, got %d", count)
	}
}
