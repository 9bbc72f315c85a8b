package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LoginDTO only checks presence; a malformed email falls through to the same
// invalid-credentials answer as an unknown one.
type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterDTO carries the plaintext password only until it is hashed.
type RegisterDTO struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	HiringDate   *Date  `json:"hiring_date"`
	PositionID   int64  `json:"position_id" validate:"required,gt=0"`
	DepartmentID *int64 `json:"department_id" validate:"omitempty,gt=0"`
	SupervisorID *int64 `json:"supervisor_id" validate:"omitempty,gt=0"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Date accepts either a calendar date (2006-01-02) or a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("hiring_date must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("hiring_date %q is not a date", raw)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}
