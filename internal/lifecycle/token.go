package lifecycle

import (
	"time"

	"canteen-system/internal/domain"
)

const FirstToken = 101

// NextToken numbers orders per local calendar day: the first order of a day
// gets 101, the next 102 and so on. It counts existing orders and is not a
// key; two writers racing on the same count will hand out the same token.
func NextToken(orders []domain.Order, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(time.DateOnly)
	n := 0
	for _, o := range orders {
		if time.UnixMilli(o.CreatedAt).In(loc).Format(time.DateOnly) == today {
			n++
		}
	}
	return FirstToken + n
}
