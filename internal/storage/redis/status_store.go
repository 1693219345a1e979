package redis

import (
	"context"

	"github.com/goodtune/classwatch/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Put overwrites the status record for a student
func (s *Store) Put(ctx context.Context, studentID string, record storage.StatusRecord) error {
	keys := []string{statusKey(studentID), studentsSet}
	args := []interface{}{studentID, record.Status, formatTimestamp(record)}

	return s.putScript.Run(ctx, s.client, keys, args...).Err()
}

// Get retrieves the status record for a student
func (s *Store) Get(ctx context.Context, studentID string) (*storage.StatusRecord, error) {
	data, err := s.client.HGetAll(ctx, statusKey(studentID)).Result()
	if err != nil {
		return nil, err
	}

	return parseStatusRecord(data)
}

// All returns every student's status record
func (s *Store) All(ctx context.Context) (map[string]storage.StatusRecord, error) {
	studentIDs, err := s.client.SMembers(ctx, studentsSet).Result()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]storage.StatusRecord, len(studentIDs))
	if len(studentIDs) == 0 {
		return snapshot, nil
	}

	// Use pipeline for efficient batch retrieval
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(studentIDs))

	for i, id := range studentIDs {
		cmds[i] = pipe.HGetAll(ctx, statusKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}

		record, err := parseStatusRecord(data)
		if err == nil {
			snapshot[studentIDs[i]] = *record
		}
	}

	return snapshot, nil
}

// Len returns the number of students with a status
func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, studentsSet).Result()
	return int(n), err
}
