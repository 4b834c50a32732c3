package mutations

import (
	"time"

	"github.com/jayvdb/platform-engine/value"
)

func timeISO8601(v value.Value, _ []value.Value) (value.Value, error) {
	t := time.Unix(v.Int(), 0).UTC()
	return value.String(t.Format(time.RFC3339)), nil
}

func timeWeekday(v value.Value, _ []value.Value) (value.Value, error) {
	t := time.Unix(v.Int(), 0).UTC()
	return value.String(t.Weekday().String()), nil
}
