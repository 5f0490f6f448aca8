// internal/profile/models.go
// User attributes consumed by games, readiness and date planning

package profile

import "time"

// Location is where a user says they are
type Location struct {
	City      string   `json:"city"`
	Area      string   `json:"area,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both coordinates are set
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// User is the read model of a user owned by the profile service
type User struct {
	ID          int64     `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	PhotoURL    string    `json:"photo_url" db:"photo_url"`
	Email       *string   `json:"-" db:"email"`
	Phone       *string   `json:"-" db:"phone"`
	PushToken   string    `json:"-" db:"push_token"`
	City        string    `json:"-" db:"city"`
	Area        string    `json:"-" db:"area"`
	Latitude    *float64  `json:"-" db:"latitude"`
	Longitude   *float64  `json:"-" db:"longitude"`
	IsPremium   bool      `json:"is_premium" db:"is_premium"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// Location returns the user's location as a value
func (u *User) Location() Location {
	return Location{City: u.City, Area: u.Area, Latitude: u.Latitude, Longitude: u.Longitude}
}

// Summary is the public card shown to a partner
type Summary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// Summary returns the public card for u
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}
