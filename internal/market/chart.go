package market

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// renderPriceChart draws the closing prices as a time-series line chart and
// returns the encoded PNG bytes. go-chart refuses to draw fewer than two
// points, so short payloads fail here rather than producing an empty image.
func renderPriceChart(symbol string, candles []Candle) ([]byte, error) {
	if len(candles) < 2 {
		return nil, errors.New("not enough candles to render")
	}

	times := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		times[i] = chart.TimeToFloat64(c.OpenTime)
		closes[i] = c.Close
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - Last 24H Price Trend", symbol),
		Width:  1000,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
		},
		YAxis: chart.YAxis{
			Name: "Price (USDT)",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    symbol,
				XValues: times,
				YValues: closes,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}

	return buf.Bytes(), nil
}
