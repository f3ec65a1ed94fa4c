package reconstruct

import "time"

// sourceHourFor maps a target-timezone hour of day to the equivalent hour in
// the source market timezone, on the given calendar date. The offset is
// resolved per instant from the IANA database, so dates on either side of a
// DST transition map correctly (a fixed offset constant would drift by an
// hour for part of the year).
func sourceHourFor(targetDate time.Time, targetHour int, targetLoc, sourceLoc *time.Location) int {
	t := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
		targetHour, 0, 0, 0, targetLoc)
	return t.In(sourceLoc).Hour()
}
