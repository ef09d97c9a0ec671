package cmd

import "github.com/etnz/tradelog/date"

// parseRange returns the range selected by the -s and -d flags, or the
// current period if -p is set.
func parseRange(from, to, period string) (date.Range, error) {
	if period == "" {
		return date.ParseRange(from, to)
	}
	p, err := date.ParsePeriod(period)
	if err != nil {
		return date.Range{}, err
	}
	return date.NewRange(date.Today(), p), nil
}
