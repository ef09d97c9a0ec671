package date

import "time"

// The trade year starts on the first Monday of January. Days before it
// belong to the previous trade year.

// FirstTradeDay returns the first Monday of January of year.
func FirstTradeDay(year int) Date {
	jan1 := New(year, time.January, 1)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.Add(offset)
}

// TradeYear returns the trade year d is in.
func TradeYear(d Date) int {
	if d.Before(FirstTradeDay(d.Year())) {
		return d.Year() - 1
	}
	return d.Year()
}

// TradeWeek returns the trade year and the week number of d. Week 1 starts
// on the first trade day, weeks run Monday to Sunday.
func TradeWeek(d Date) (year, week int) {
	year = TradeYear(d)
	return year, d.Sub(FirstTradeDay(year))/7 + 1
}

// TradeWeekRange returns the days of a trade week.
func TradeWeekRange(year, week int) Range {
	from := FirstTradeDay(year).Add(7 * (week - 1))
	return Range{From: from, To: from.Add(6)}
}
