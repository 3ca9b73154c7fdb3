// Package aggregator groups a flat forecast time series into calendar-day buckets.
package aggregator

import (
	"github.com/Leeky19/meteo/internal/weather"
)

// DefaultDays is the number of days shown by a 5-day forecast.
const DefaultDays = 5

const (
	noonFrom = 12
	noonTo   = 14
)

// GroupByDay buckets samples by calendar date. Buckets keep the order in which their
// date first appears, and samples keep their order within a bucket.
func GroupByDay(samples []weather.Sample) []weather.DayBucket {
	buckets := make([]weather.DayBucket, 0)
	index := make(map[string]int)

	for _, s := range samples {
		date := s.Date()
		i, ok := index[date]
		if !ok {
			i = len(buckets)
			index[date] = i
			buckets = append(buckets, weather.DayBucket{Date: date})
		}
		buckets[i].Samples = append(buckets[i].Samples, s)
	}

	for i := range buckets {
		b := &buckets[i]
		b.Representative = Representative(b.Samples)
		b.MinTempC, b.MaxTempC = extrema(b.Samples)
	}

	return buckets
}

// Limit keeps the first n buckets.
func Limit(buckets []weather.DayBucket, n int) []weather.DayBucket {
	if n < 0 {
		n = 0
	}
	if len(buckets) <= n {
		return buckets
	}
	return buckets[:n]
}

// Representative picks the first sample between 12:00 and 14:00 inclusive, falling back
// to the first sample of the day.
func Representative(samples []weather.Sample) weather.Sample {
	if len(samples) == 0 {
		return weather.Sample{}
	}
	for _, s := range samples {
		if h, ok := s.Hour(); ok && h >= noonFrom && h <= noonTo {
			return s
		}
	}
	return samples[0]
}

func extrema(samples []weather.Sample) (minC, maxC float64) {
	for i, s := range samples {
		lo, hi := s.TemperatureC, s.TemperatureC
		if s.MinTempC != 0 || s.MaxTempC != 0 {
			lo, hi = min(lo, s.MinTempC), max(hi, s.MaxTempC)
		}
		if i == 0 || lo < minC {
			minC = lo
		}
		if i == 0 || hi > maxC {
			maxC = hi
		}
	}
	return minC, maxC
}
