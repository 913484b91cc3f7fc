package smoke

import "time"

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
