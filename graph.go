package tradelog

import "github.com/shopspring/decimal"

const (
	graphScale        = 10
	graphMaxGridLines = 20
	graphOffset       = 50
)

var (
	graphMultipliers = []int64{1, 2, 5}
	graphHeadroom    = decimal.RequireFromString("1.1")
)

// CommonInterval returns the first "round" interval (1, 2 or 5 × 10^n,
// n ≥ 1) beyond value: the smallest one strictly greater than a positive
// value, the closest one strictly lower than a negative value. It returns
// 0 for 0.
func CommonInterval(value decimal.Decimal) decimal.Decimal {
	if value.IsZero() {
		return decimal.Zero
	}
	power := decimal.NewFromInt(10)
	for {
		for _, m := range graphMultipliers {
			interval := power.Mul(decimal.NewFromInt(m))
			if value.IsNegative() {
				if value.GreaterThan(interval.Neg()) {
					return interval.Neg()
				}
			} else if value.LessThan(interval) {
				return interval
			}
		}
		power = power.Mul(decimal.NewFromInt(10))
	}
}

// Graph is the layout of a cumulative return chart on a canvas.
type Graph struct {
	Width, Height  int
	XOffset        int
	YOffset        int
	XStart, YStart decimal.Decimal // axis values at the origin
	XGrid, YGrid   GridLines
	Points         []PlotPoint
}

// GridLines describes the grid on one axis.
type GridLines struct {
	Value decimal.Decimal // value between two lines
	Pixel decimal.Decimal // pixels between two lines
}

// PlotPoint is a graph point with its canvas position, origin at the top left.
type PlotPoint struct {
	GraphPoint
	X, Y decimal.Decimal
}

// GraphScale lays out points on a width × height canvas. Grid intervals are
// common intervals chosen to draw about twenty lines, the viewable area has
// ten percent of headroom.
func GraphScale(points []GraphPoint, width, height int) Graph {
	g := Graph{Width: width, Height: height, XOffset: graphOffset, YOffset: graphOffset}

	var maxX, maxY, minY decimal.Decimal
	for _, p := range points {
		x, y := decimal.NewFromInt(int64(p.DayOfYear)), p.RunningReturn.Decimal()
		maxX = decimal.Max(maxX, x)
		maxY = decimal.Max(maxY, y)
		minY = decimal.Min(minY, y)
	}
	g.XStart = decimal.Zero
	g.YStart = CommonInterval(minY)

	lines := decimal.NewFromInt(graphMaxGridLines)
	heightRange := maxY.Sub(g.YStart)
	widthRange := maxX.Sub(g.XStart)
	g.YGrid.Value = gridInterval(heightRange.DivRound(lines, graphScale))
	g.XGrid.Value = gridInterval(widthRange.DivRound(lines, graphScale))

	graphHeight := heightRange.Mul(graphHeadroom).DivRound(g.YGrid.Value, graphScale).Ceil().Mul(g.YGrid.Value)
	graphWidth := widthRange.Mul(graphHeadroom).DivRound(g.XGrid.Value, graphScale).Ceil().Mul(g.XGrid.Value)
	if graphHeight.IsZero() {
		graphHeight = g.YGrid.Value
	}
	if graphWidth.IsZero() {
		graphWidth = g.XGrid.Value
	}

	canvasW, canvasH := decimal.NewFromInt(int64(width)), decimal.NewFromInt(int64(height))
	g.YGrid.Pixel = g.YGrid.Value.DivRound(graphHeight, graphScale).Mul(canvasH)
	g.XGrid.Pixel = g.XGrid.Value.DivRound(graphWidth, graphScale).Mul(canvasW)

	for _, p := range points {
		x := decimal.NewFromInt(int64(p.DayOfYear)).DivRound(graphWidth, graphScale).Mul(canvasW)
		y := p.RunningReturn.Decimal().Sub(g.YStart).DivRound(graphHeight, graphScale).Mul(canvasH)
		g.Points = append(g.Points, PlotPoint{
			GraphPoint: p,
			X:          x.Add(decimal.NewFromInt(int64(g.XOffset))),
			Y:          decimal.NewFromInt(int64(height)).Sub(y.Add(decimal.NewFromInt(int64(g.YOffset)))),
		})
	}
	return g
}

// gridInterval is CommonInterval with a floor at the smallest interval, so
// a flat series still gets a grid.
func gridInterval(exact decimal.Decimal) decimal.Decimal {
	if i := CommonInterval(exact); !i.IsZero() {
		return i
	}
	return decimal.NewFromInt(10)
}
