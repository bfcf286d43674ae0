package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

// Indexes are created on Close so bulk inserts during a flight do not pay
// for index maintenance.
const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_ticks_session_timestamp ON ticks (session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions (start_time);`

const (
	insertSessionSQL = `
INSERT INTO sessions (id,
                      name,
                      start_time,
                      config)
VALUES (?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    name,
    start_time,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    name,
    start_time,
    config
FROM sessions
ORDER BY start_time`

	selectLatestSessionSQL = `
SELECT
    id,
    name,
    start_time,
    config
FROM sessions
ORDER BY start_time DESC, id DESC
LIMIT 1`

	insertTicksSQL = `
INSERT INTO ticks (session_id,
                   seq,
                   timestamp,
                   throttle,
                   yaw_rate,
                   pitch,
                   roll,
                   gyro_x,
                   gyro_y,
                   gyro_z,
                   accel_x,
                   accel_y,
                   accel_z,
                   pos_x,
                   pos_y,
                   pos_z,
                   front_left,
                   front_right,
                   rear_left,
                   rear_right)
VALUES `

	selectTicksSQL = `
SELECT
    seq,
    timestamp,
    throttle,
    yaw_rate,
    pitch,
    roll,
    gyro_x,
    gyro_y,
    gyro_z,
    accel_x,
    accel_y,
    accel_z,
    pos_x,
    pos_y,
    pos_z,
    front_left,
    front_right,
    rear_left,
    rear_right
FROM ticks
WHERE
    session_id = ?
    AND timestamp BETWEEN ? AND ?
ORDER BY seq`
)
