package reservation

import (
	"errors"
	"fmt"
)

// Category classifies why a candidate reservation was refused. All
// categories are user-correctable and map to a client error.
type Category string

const (
	SpotTaken          Category = "SpotTaken"
	DailyLimitReached  Category = "DailyLimitReached"
	TooSoon            Category = "TooSoon"
	WeeklyLimitReached Category = "WeeklyLimitReached"
)

// Rejection is returned by Validate when a business rule refuses the
// candidate. It is a normal outcome, not a failure of the validator.
type Rejection struct {
	Category Category
	Message  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Category, r.Message)
}

// Reject builds a Rejection with a formatted message.
func Reject(category Category, format string, args ...any) *Rejection {
	return &Rejection{Category: category, Message: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
