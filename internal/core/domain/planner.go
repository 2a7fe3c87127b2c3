package domain

import "time"

// City identifies the location weather is fetched for.
type City struct {
	Name    string  `json:"name" yaml:"name"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
	Country string  `json:"country,omitempty" yaml:"country"`
	State   string  `json:"state,omitempty" yaml:"state"`
}

// Tokyo is the default city when configuration does not name one.
var Tokyo = City{
	Name:    "Tokyo",
	Lat:     35.6895,
	Lon:     139.6917,
	Country: "JP",
	State:   "Tokyo",
}

// WeatherSnapshot is the combined result of one weather refresh: current
// conditions plus today's maximum precipitation probability.
type WeatherSnapshot struct {
	City        City      `json:"city"`
	TempC       float64   `json:"temp_c"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	// MaxPop is today's maximum precipitation probability in [0,1].
	// Negative when the forecast had no slots for today.
	MaxPop    float64   `json:"max_pop"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Note is a free-text annotation on one calendar day.
type Note struct {
	ID string `json:"id" db:"id"`
	// Day is the calendar day in YYYY-MM-DD form.
	Day       string    `json:"day" db:"day" validate:"required,datetime=2006-01-02"`
	Text      string    `json:"text" db:"text" validate:"required,max=2000"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Session is the authenticated backend session.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MonthKey returns the in-flight key for a month refresh, e.g. "2026-08".
func MonthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
