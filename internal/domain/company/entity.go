package company

import "time"

type Company struct {
	ID   string
	Name string
	// Timezone is an IANA zone name; nil means the process default applies.
	Timezone  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
