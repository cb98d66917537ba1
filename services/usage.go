package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/store"
)

const yAxisWatts = "Power Consumption (W)"

// UsageService rolls raw per-minute power samples up into chart-ready
// averages. Every operation returns a well-formed chart even when the
// store misbehaves: failures shrink the chart, they never surface as
// errors to the transport layer.
type UsageService struct {
	store store.Store
}

func NewUsageService(st store.Store) *UsageService {
	return &UsageService{store: st}
}

// GetMinutelyUsage returns one point per recorded minute of the given
// hour. Minutes are the finest granularity, so values are the raw samples.
func (s *UsageService) GetMinutelyUsage(ctx context.Context, productID, date, hour string) models.ChartDataResponse {
	title := fmt.Sprintf("Minute-by-Minute Usage on %s at %s:00", date, hour)

	raw, err := s.store.Get(ctx, usagePath(productID, date, hour))
	if err != nil {
		log.Printf("ERROR: failed to read minutely usage for %s %s %s: %v", productID, date, hour, err)
		return emptyChart(fmt.Sprintf("No data available for %s at %s:00", date, hour), "Minute")
	}

	dataPoints := []models.ChartDataPoint{}
	if node, ok := asSampleNode(raw); ok {
		for _, e := range node.entries() {
			if e.raw == nil {
				continue
			}
			watts, ok := asWatts(e.raw)
			if !ok {
				log.Printf("WARNING: skipping invalid sample at minute %s: %v", e.key, e.raw)
				continue
			}
			dataPoints = append(dataPoints, models.ChartDataPoint{
				Label: e.key,
				Value: round2(watts),
			})
		}
	}

	return chart(dataPoints, title, "Minute")
}

// GetHourlyUsage returns one point per hour of the given date that has at
// least one valid sample, valued at the mean of that hour's samples.
func (s *UsageService) GetHourlyUsage(ctx context.Context, productID, date string) models.ChartDataResponse {
	raw, err := s.store.Get(ctx, usagePath(productID, date))
	if err != nil {
		log.Printf("ERROR: failed to read hourly usage for %s %s: %v", productID, date, err)
		return emptyChart(fmt.Sprintf("No data available for %s", date), "Hour")
	}

	dataPoints := []models.ChartDataPoint{}
	if node, ok := asSampleNode(raw); ok {
		for _, e := range node.entries() {
			// Sibling keys like connection_status live next to hour keys.
			if !isDigits(e.key) {
				continue
			}
			values := validSamples(e.raw)
			if len(values) == 0 {
				continue
			}
			dataPoints = append(dataPoints, models.ChartDataPoint{
				Label: e.key + ":00",
				Value: round2(mean(values)),
			})
		}
	}

	return chart(dataPoints, fmt.Sprintf("Hourly Usage on %s", date), "Hour")
}

// GetDailyUsage returns one point per calendar day of the month that has
// at least one valid sample, valued at the mean over ALL of the day's
// samples flattened across hours and minutes.
func (s *UsageService) GetDailyUsage(ctx context.Context, productID, yearMonth string) models.ChartDataResponse {
	year, month, err := parseYearMonth(yearMonth)
	if err != nil {
		log.Printf("ERROR: failed to read daily usage for %s: %v", productID, err)
		return emptyChart(fmt.Sprintf("No data available for %s", yearMonth), "Day")
	}

	dataPoints := []models.ChartDataPoint{}
	skipped := 0
	for day := 1; day <= daysInMonth(year, month); day++ {
		date := fmt.Sprintf("%s-%02d", yearMonth, day)

		values, err := s.daySamples(ctx, productID, date)
		if err != nil {
			log.Printf("WARNING: skipping day %s: %v", date, err)
			skipped++
			continue
		}
		if len(values) == 0 {
			continue
		}
		dataPoints = append(dataPoints, models.ChartDataPoint{
			Label: fmt.Sprintf("%02d", day),
			Value: round2(mean(values)),
		})
	}
	if skipped > 0 {
		log.Printf("WARNING: daily aggregation for %s %s skipped %d day(s)", productID, yearMonth, skipped)
	}

	title := fmt.Sprintf("Daily Usage in %s %d", time.Month(month), year)
	return chart(dataPoints, title, "Day")
}

// GetMonthlyUsage returns one point per month of the year that has at
// least one valid sample, valued at the mean over every sample recorded
// that month. This is a mean power reading for charts; the billing energy
// total is computed separately.
func (s *UsageService) GetMonthlyUsage(ctx context.Context, productID, year string) models.ChartDataResponse {
	yearNum, err := parseYear(year)
	if err != nil {
		log.Printf("ERROR: failed to read monthly usage for %s: %v", productID, err)
		return emptyChart(fmt.Sprintf("No data available for %s", year), "Month")
	}

	dataPoints := []models.ChartDataPoint{}
	skipped := 0
	for month := 1; month <= 12; month++ {
		var values []float64
		for day := 1; day <= daysInMonth(yearNum, month); day++ {
			date := fmt.Sprintf("%s-%02d-%02d", year, month, day)
			dayValues, err := s.daySamples(ctx, productID, date)
			if err != nil {
				log.Printf("WARNING: skipping day %s: %v", date, err)
				skipped++
				continue
			}
			values = append(values, dayValues...)
		}
		if len(values) == 0 {
			continue
		}
		dataPoints = append(dataPoints, models.ChartDataPoint{
			Label: time.Month(month).String()[:3],
			Value: round2(mean(values)),
		})
	}
	if skipped > 0 {
		log.Printf("WARNING: monthly aggregation for %s %s skipped %d day(s)", productID, year, skipped)
	}

	return chart(dataPoints, fmt.Sprintf("Monthly Usage in %s", year), "Month")
}

// daySamples flattens every valid sample recorded on one date.
func (s *UsageService) daySamples(ctx context.Context, productID, date string) ([]float64, error) {
	raw, err := s.store.Get(ctx, usagePath(productID, date))
	if err != nil {
		return nil, err
	}

	node, ok := asSampleNode(raw)
	if !ok {
		return nil, nil
	}

	var values []float64
	for _, e := range node.entries() {
		if !isDigits(e.key) {
			continue
		}
		values = append(values, validSamples(e.raw)...)
	}
	return values, nil
}

func parseYear(year string) (int, error) {
	t, err := time.Parse("2006", year)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %v", year, err)
	}
	return t.Year(), nil
}

func chart(points []models.ChartDataPoint, title, xAxis string) models.ChartDataResponse {
	return models.ChartDataResponse{
		DataPoints: points,
		ChartTitle: title,
		XAxisLabel: xAxis,
		YAxisLabel: yAxisWatts,
	}
}

func emptyChart(title, xAxis string) models.ChartDataResponse {
	return chart([]models.ChartDataPoint{}, title, xAxis)
}
