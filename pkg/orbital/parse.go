package orbital

import (
	"fmt"
	"strings"
	"time"

	"github.com/orbitwatch/uphere-go/pkg/uphere"
)

// ParseError describes one rejected record. The surrounding batch is not
// aborted; failures are collected in a [Report] next to the valid objects.
type ParseError struct {
	Index  int    // position of the record in the source batch
	Name   string // record name, when present, to help locate the bad entry
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.Name, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Report summarizes the parse failures of one batch.
type Report struct {
	Failures []ParseError `json:"failures,omitempty"`
}

// Failed reports how many records were rejected.
func (r Report) Failed() int { return len(r.Failures) }

// Parse converts one raw record into an Object.
//
// The only hard requirement is a NORAD identifier (the upstream spells it
// "number", "norad_id" or "id" depending on the endpoint). Partial data
// never blocks an otherwise-valid record: an unrecognized object type maps
// to TypeUnknown and a malformed launch date becomes an absent date.
func Parse(rec uphere.SatelliteRecord) (Object, error) {
	noradID := firstNonEmpty(rec.Number.String(), rec.NoradID.String(), rec.ID.String())
	if noradID == "" {
		return Object{}, &ParseError{Name: rec.Name, Reason: "missing norad id"}
	}

	obj := Object{
		NoradID:    noradID,
		Name:       rec.Name,
		Type:       ParseObjectType(firstNonEmpty(rec.Type, rec.Classification)),
		LaunchDate: parseLaunchDate(rec.LaunchDate),
		Country:    rec.Country,
		Position:   parsePosition(rec),
	}
	return obj, nil
}

// ParseAll converts a batch of raw records, applying the partial-success
// policy: valid records are returned in order, rejected ones are reported
// in the Report. It never fails the whole batch.
func ParseAll(recs []uphere.SatelliteRecord) ([]Object, Report) {
	objects := make([]Object, 0, len(recs))
	var report Report

	for i, rec := range recs {
		obj, err := Parse(rec)
		if err != nil {
			pe := *(err.(*ParseError))
			pe.Index = i
			report.Failures = append(report.Failures, pe)
			continue
		}
		objects = append(objects, obj)
	}
	return objects, report
}

// ParseObjectType normalizes the upstream's type/classification strings.
func ParseObjectType(raw string) ObjectType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "payload", "pl", "satellite", "sat":
		return TypePayload
	case "rocket body", "rocket-body", "r/b", "rb":
		return TypeRocketBody
	case "debris", "deb":
		return TypeDebris
	default:
		return TypeUnknown
	}
}

// launchDateLayouts are the formats the upstream has been observed to use.
var launchDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

func parseLaunchDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range launchDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	// Malformed dates are absent dates, not parse failures.
	return nil
}

func parsePosition(rec uphere.SatelliteRecord) *Position {
	if rec.Latitude == nil || rec.Longitude == nil {
		return nil
	}
	pos := &Position{
		Latitude:  *rec.Latitude,
		Longitude: *rec.Longitude,
	}
	switch {
	case rec.Altitude != nil:
		pos.AltKm = *rec.Altitude
	case rec.Height != nil:
		pos.AltKm = *rec.Height
	}
	return pos
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
