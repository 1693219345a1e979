package redis

const (
	// putStatusScript atomically overwrites a status hash and indexes the student
	putStatusScript = `
local status_key = KEYS[1]      -- classwatch:status:{studentID}
local students_set = KEYS[2]    -- classwatch:students

local student_id = ARGV[1]
local status = ARGV[2]
local timestamp = ARGV[3]

redis.call('HSET', status_key,
  'student_id', student_id,
  'status', status,
  'timestamp', timestamp
)
redis.call('SADD', students_set, student_id)

return 1
`
)
