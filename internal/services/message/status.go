package message

import "meshtalk/internal/domain"

// mergeStatus decides which of the stored and newly reported status to keep.
//
// Progress is monotonic: a lower-ranked report never regresses the stored
// value. Equal rank keeps the new report so metadata such as the delivered-at
// timestamp refreshes. Failed is the one asymmetry: it records abandonment of
// an attempt, so it may replace Sending, but once any transport reported
// Sent or better a late failure from another path is ignored.
func mergeStatus(current, next domain.DeliveryStatus) domain.DeliveryStatus {
	if next.State == domain.StateFailed {
		if current.Rank() >= domain.Sent().Rank() {
			return current
		}
		return next
	}
	if next.Rank() >= current.Rank() {
		return next
	}
	return current
}
