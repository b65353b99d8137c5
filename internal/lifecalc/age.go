package lifecalc

import "time"

// AgeAt returns whole years of age at now using the standard birthday
// convention: the year count drops by one if this year's birthday has not
// happened yet. Never negative.
func AgeAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
