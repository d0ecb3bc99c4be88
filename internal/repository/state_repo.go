package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"thermolab/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	thermostatStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO thermostat_state (id, mode, setpoint_f, temp_f, red, blue, errors, light_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			setpoint_f=excluded.setpoint_f,
			temp_f=excluded.temp_f,
			red=excluded.red,
			blue=excluded.blue,
			errors=excluded.errors,
			light_on=excluded.light_on,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, mode, setpoint_f, temp_f, red, blue, errors, light_on, updated_at
		FROM thermostat_state WHERE id=?
	`
)

// marshalErrorCodes converts the slice to a JSON string.
func marshalErrorCodes(codes []string) (string, error) {
	b, err := json.Marshal(codes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalErrorCodes parses a JSON string into a slice.
func unmarshalErrorCodes(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(s), &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// Save updates or inserts the thermostat_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.ThermostatState) error {
	errorsJSONStr, err := marshalErrorCodes(state.ErrorCodes)
	if err != nil {
		return err
	}

	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		thermostatStateRowID,
		state.Mode,
		state.SetpointF,
		state.CurrentTempF,
		state.Indicators.Red,
		state.Indicators.Blue,
		errorsJSONStr,
		state.LightOn,
		tsUTC,
	)
	return err
}

// Load fetches the single thermostat_state row (id=1).
func (r *StateSQLite) Load(ctx context.Context) (models.ThermostatState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, thermostatStateRowID)

	var s models.ThermostatState
	var errorsJSONStr string
	if err := row.Scan(
		&s.ID,
		&s.Mode,
		&s.SetpointF,
		&s.CurrentTempF,
		&s.Indicators.Red,
		&s.Indicators.Blue,
		&errorsJSONStr,
		&s.LightOn,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThermostatState{}, nil // no state yet
		}
		return models.ThermostatState{}, err
	}

	codes, err := unmarshalErrorCodes(errorsJSONStr)
	if err != nil {
		return models.ThermostatState{}, err
	}
	s.ErrorCodes = codes
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
