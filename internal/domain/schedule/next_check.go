package schedule

import "time"

// NextCheckTime computes when a replenishing resource should next be
// examined. remaining is the time until the resource completes and
// thresholdHours is the user's configured lead time.
//
// While the remaining time is still above the threshold, the next check is
// the exact moment the remaining time first drops to the threshold. Once
// inside the threshold window the threshold is subdivided into three equal
// steps and walked backward until the stepped value drops below the
// remaining time, so the check re-fires meaningfully before the resource is
// full instead of busy-looping at now. A zero threshold skips the walk and
// schedules the check for the completion moment itself.
func NextCheckTime(now time.Time, remaining time.Duration, thresholdHours int) time.Time {
	remainingHours := remaining.Hours()
	threshold := float64(thresholdHours)
	if remainingHours > threshold {
		return now.Add(remaining - time.Duration(thresholdHours)*time.Hour)
	}
	interval := threshold / 3
	if interval > 0 {
		// The walk is clamped at zero so the result never lands past the
		// completion moment.
		for remainingHours <= threshold && threshold > 0 {
			threshold -= interval
		}
		if threshold < 0 {
			threshold = 0
		}
	} else {
		threshold = 0
	}
	return now.Add(remaining - time.Duration(threshold*float64(time.Hour)))
}
