package storage

import (
	"github.com/toth-andor/drone/internal/flight"
)

// tickValues flattens a tick into the argument list of insertTicksSQL.
func tickValues(values []any, sessionID string, t flight.Tick) []any {
	return append(values,
		sessionID,
		t.Seq,
		t.Timestamp,
		t.Throttle,
		t.YawRate,
		t.Pitch,
		t.Roll,
		t.Gyro.X,
		t.Gyro.Y,
		t.Gyro.Z,
		t.Accel.X,
		t.Accel.Y,
		t.Accel.Z,
		t.Position.X,
		t.Position.Y,
		t.Position.Z,
		t.FrontLeft,
		t.FrontRight,
		t.RearLeft,
		t.RearRight,
	)
}

// tickColumns is the number of values tickValues appends per tick.
const tickColumns = 20

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanTick(s scanner) (flight.Tick, error) {
	var t flight.Tick
	err := s.Scan(
		&t.Seq,
		&t.Timestamp,
		&t.Throttle,
		&t.YawRate,
		&t.Pitch,
		&t.Roll,
		&t.Gyro.X,
		&t.Gyro.Y,
		&t.Gyro.Z,
		&t.Accel.X,
		&t.Accel.Y,
		&t.Accel.Z,
		&t.Position.X,
		&t.Position.Y,
		&t.Position.Z,
		&t.FrontLeft,
		&t.FrontRight,
		&t.RearLeft,
		&t.RearRight,
	)
	return t, err
}

func scanSession(s scanner) (*flight.Session, error) {
	var sess flight.Session
	if err := s.Scan(&sess.ID, &sess.Name, &sess.StartTime, &sess.Config); err != nil {
		return nil, err
	}
	return &sess, nil
}
