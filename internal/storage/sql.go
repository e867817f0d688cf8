package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time, source, config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source,
    config
FROM sessions
ORDER BY start_time`

	insertRecordSQL = `
INSERT INTO records (session_id,
                     received_at,
                     elapsed_seconds,
                     humidity,
                     temperature,
                     pressure,
                     altitude,
                     gas_ppm,
                     gyro_x,
                     gyro_y,
                     gyro_z,
                     accel_x,
                     accel_y,
                     accel_z,
                     rssi)
VALUES `

	selectRecordsSQL = `
SELECT
    id,
    session_id,
    received_at,
    elapsed_seconds,
    humidity,
    temperature,
    pressure,
    altitude,
    gas_ppm,
    gyro_x,
    gyro_y,
    gyro_z,
    accel_x,
    accel_y,
    accel_z,
    rssi
FROM records
WHERE
    session_id = ?
  AND id > ?
ORDER BY id
LIMIT ?`
)

//go:embed schema.sql
var schemaSQL string
