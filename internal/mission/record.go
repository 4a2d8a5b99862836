// Package mission defines the mission record columns and the title matcher
// used to decide whether an encyclopedia article describes a given mission.
package mission

import "strings"

// Column names of the mission table.
const (
	ColumnMission     = "Mission"
	ColumnLaunchSite  = "Launch site / base (or coordinates)"
	ColumnDestination = "Destination station"
	ColumnLaunchDate  = "Launch (UTC)"
	ColumnDuration    = "Mission duration"
	ColumnLandingSite = "Landing site (or coordinates)"
	ColumnRocket      = "Rocket type"
	ColumnSourceURL   = "Source URL"
)

// TargetColumns are the six scraped fields. A row with all of them populated
// is considered complete.
var TargetColumns = []string{
	ColumnLaunchSite,
	ColumnDestination,
	ColumnLaunchDate,
	ColumnDuration,
	ColumnLandingSite,
	ColumnRocket,
}

// RequiredColumns lists every column the table must carry, in output order.
func RequiredColumns() []string {
	cols := make([]string, 0, len(TargetColumns)+2)
	cols = append(cols, ColumnMission)
	cols = append(cols, TargetColumns...)
	return append(cols, ColumnSourceURL)
}

// Record holds the scraped facts for one mission row.
type Record struct {
	LaunchSite  string
	Destination string
	LaunchDate  string
	Duration    string
	LandingSite string
	Rocket      string
	SourceURL   string
}

// Columns maps the record onto table columns. All seven values are always
// present so that a successful scrape overwrites the whole row.
func (r Record) Columns() map[string]string {
	return map[string]string{
		ColumnLaunchSite:  r.LaunchSite,
		ColumnDestination: r.Destination,
		ColumnLaunchDate:  r.LaunchDate,
		ColumnDuration:    r.Duration,
		ColumnLandingSite: r.LandingSite,
		ColumnRocket:      r.Rocket,
		ColumnSourceURL:   r.SourceURL,
	}
}

// NeedsUpdate reports whether a row should be scraped. get returns the
// current value of a column for the row.
func NeedsUpdate(get func(column string) string, force bool) bool {
	if force {
		return true
	}
	for _, col := range TargetColumns {
		if strings.TrimSpace(get(col)) == "" {
			return true
		}
	}
	return false
}
