package uphere

import (
	"encoding/json"
	"time"
)

// SatelliteRecord is one raw entry from the satellite list endpoint.
//
// The upstream is loose about field names across endpoints: the NORAD
// identifier arrives as "number", "norad_id" or "id" depending on the
// route, and the object class as "type" or "classification". All variants
// are kept here; the orbital package resolves them into the normalized
// model.
type SatelliteRecord struct {
	Name           string      `json:"name"`
	Number         json.Number `json:"number"`
	NoradID        json.Number `json:"norad_id"`
	ID             json.Number `json:"id"`
	Type           string      `json:"type"`
	Classification string      `json:"classification"`
	LaunchDate     string      `json:"launch_date"`
	Country        string      `json:"country"`
	Latitude       *float64    `json:"latitude"`
	Longitude      *float64    `json:"longitude"`
	Altitude       *float64    `json:"altitude"`
	Height         *float64    `json:"height"`
}

// Country is a launch country usable as a satellite list filter.
type Country struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// LaunchSite is a satellite launch site known to the upstream.
type LaunchSite struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// OrbitPoint is one ground-track sample from the orbit endpoint.
// Date is kept verbatim; the upstream timestamp format is tier-dependent.
type OrbitPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Date      string  `json:"date"`
}

// SatelliteDetails is the response of the tier-gated details endpoint.
type SatelliteDetails struct {
	Name             string      `json:"name"`
	Number           json.Number `json:"number"`
	Type             string      `json:"type"`
	Country          string      `json:"country"`
	LaunchDate       string      `json:"launch_date"`
	OrbitalPeriodMin *float64    `json:"orbital_period"`
}

// SatelliteLocation is the response of the tier-gated location endpoint.
type SatelliteLocation struct {
	Name      string      `json:"name"`
	Number    json.Number `json:"number"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	HeightKm  float64     `json:"height"`
	SpeedKmh  float64     `json:"speed"`
	Units     string      `json:"units"`
}

// ListOptions are the optional server-side filters of the list endpoint.
type ListOptions struct {
	Text    string // substring filter applied by the upstream
	Country string // country abbreviation filter, e.g. "US"
}

// RequestStats is a snapshot of the client's request accounting.
type RequestStats struct {
	RateLimit     float64       `json:"rate_limit"`      // configured requests per second
	TotalRequests int64         `json:"total_requests"`  // HTTP attempts made, retries counted individually
	LastRequestAt time.Time     `json:"last_request_at"` // zero until the first attempt
	TimeUntilNext time.Duration `json:"time_until_next"` // remaining pacing wait
	CanRequestNow bool          `json:"can_request_now"`
}
