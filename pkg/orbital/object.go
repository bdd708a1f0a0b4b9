// Package orbital defines the normalized data model for trackable space
// objects and the parsing step that converts raw API records into it.
//
// Raw records arrive with inconsistent field names and partially missing
// data. Parsing is strict about exactly one thing: the NORAD identifier.
// A record without one is rejected; everything else degrades gracefully
// (unknown type maps to [TypeUnknown], a malformed launch date becomes an
// absent date).
package orbital

import (
	"fmt"
	"time"
)

// ObjectType classifies a trackable body.
type ObjectType string

// Known object types. Anything the upstream reports outside this set
// normalizes to TypeUnknown.
const (
	TypePayload    ObjectType = "payload"
	TypeRocketBody ObjectType = "rocket-body"
	TypeDebris     ObjectType = "debris"
	TypeUnknown    ObjectType = "unknown"
)

// Position is a geodetic position. Absent when the upstream tier does not
// provide location data.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AltKm     float64 `json:"alt_km"`
}

// Object is the normalized representation of one trackable body.
//
// Objects are constructed exclusively by [Parse] and immutable afterwards.
// NoradID is always non-empty; the parser rejects records without one.
type Object struct {
	NoradID    string     `json:"norad_id"`
	Name       string     `json:"name"`
	Type       ObjectType `json:"type"`
	LaunchDate *time.Time `json:"launch_date,omitempty"`
	Country    string     `json:"country,omitempty"`
	Position   *Position  `json:"position,omitempty"`
}

// HasPosition reports whether location data was present in the source record.
func (o Object) HasPosition() bool { return o.Position != nil }

// String renders the object for logs and CLI output.
func (o Object) String() string {
	name := o.Name
	if name == "" {
		name = "norad " + o.NoradID
	}
	return fmt.Sprintf("%s (%s)", name, o.Type)
}
