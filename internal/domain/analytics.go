package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrInvalidDate is returned when a summary date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const (
	trendWindowDays  = 30
	weeklyWindowDays = 7
)

// CategorySummary is the per-category slice of a daily summary.
type CategorySummary struct {
	Category        Category
	DurationMinutes int
	EntryCount      int
	AverageMood     *float64
	Percentage      float64
}

// DailySummary reports one user's category coverage for a single date.
// It is recomputed from the record store on every request, never persisted.
type DailySummary struct {
	Date                 string
	TotalLoggedMinutes   int
	CompletionPercentage float64
	Categories           []CategorySummary // registry order
}

// TrendPoint is one day's total minutes for a category.
type TrendPoint struct {
	Date    string
	Minutes int
}

// TrendEntry reports rolling statistics for one category.
type TrendEntry struct {
	Category       Category
	WeeklyAverage  float64
	MonthlyAverage float64
	StreakDays     int
	DataPoints     []TrendPoint // ascending by date, active days only
}

// Analytics derives summaries and trends from activity snapshots. It holds
// no state beyond its collaborators; every call fetches fresh records.
type Analytics struct {
	records ActivityRepository
	now     func() time.Time
}

// NewAnalytics constructs the analytics engine.
func NewAnalytics(records ActivityRepository) *Analytics {
	return &Analytics{records: records, now: time.Now}
}

// WithClock overrides the reference clock. Intended for tests.
func (a *Analytics) WithClock(now func() time.Time) *Analytics {
	a.now = now
	return a
}

// DailySummary computes per-category totals and coverage for one date.
// The date must be formatted as YYYY-MM-DD.
func (a *Analytics) DailySummary(ctx context.Context, userID, date string) (*DailySummary, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}

	records, err := a.records.ListByDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		minutes  int
		entries  int
		moodSum  int
		moodDone int
	}
	buckets := make(map[Category]*bucket)
	total := 0
	for _, rec := range records {
		b := buckets[rec.Category]
		if b == nil {
			b = &bucket{}
			buckets[rec.Category] = b
		}
		b.minutes += rec.DurationMinutes
		b.entries++
		if rec.MoodRating != nil {
			b.moodSum += *rec.MoodRating
			b.moodDone++
		}
		total += rec.DurationMinutes
	}

	summary := &DailySummary{
		Date:               day.Format(DateLayout),
		TotalLoggedMinutes: total,
		Categories:         make([]CategorySummary, 0, CategoryCount()),
	}

	active := 0
	for _, category := range Categories() {
		entry := CategorySummary{Category: category}
		if b, ok := buckets[category]; ok {
			entry.DurationMinutes = b.minutes
			entry.EntryCount = b.entries
			if b.moodDone > 0 {
				mood := round1(float64(b.moodSum) / float64(b.moodDone))
				entry.AverageMood = &mood
			}
			if total > 0 {
				entry.Percentage = round1(float64(b.minutes) / float64(total) * 100)
			}
			if b.minutes > 0 {
				active++
			}
		}
		summary.Categories = append(summary.Categories, entry)
	}

	summary.CompletionPercentage = round1(float64(active) / float64(CategoryCount()) * 100)
	return summary, nil
}

// Trends computes weekly/monthly averages, streaks, and a 7-day series per
// registered category. The whole 30-day window is fetched once and grouped
// in memory.
func (a *Analytics) Trends(ctx context.Context, userID string) ([]TrendEntry, error) {
	today := truncateToDay(a.now())
	since := today.AddDate(0, 0, -trendWindowDays)

	records, err := a.records.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	// Per-category map of date key -> total minutes on that date.
	dailyTotals := make(map[Category]map[string]int)
	for _, rec := range records {
		totals := dailyTotals[rec.Category]
		if totals == nil {
			totals = make(map[string]int)
			dailyTotals[rec.Category] = totals
		}
		totals[rec.ActivityDate.Format(DateLayout)] += rec.DurationMinutes
	}

	weekCutoff := today.AddDate(0, 0, -weeklyWindowDays)
	entries := make([]TrendEntry, 0, CategoryCount())
	for _, category := range Categories() {
		totals := dailyTotals[category]
		entry := TrendEntry{
			Category:       category,
			MonthlyAverage: averageOverActiveDays(totals, since),
			WeeklyAverage:  averageOverActiveDays(totals, weekCutoff),
			StreakDays:     streakEndingAt(totals, today),
			DataPoints:     dataPointsSince(totals, weekCutoff, today),
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// averageOverActiveDays averages per-date totals for dates on or after the
// cutoff. Days without activity are excluded from the denominator; no active
// days yields 0.
func averageOverActiveDays(totals map[string]int, cutoff time.Time) float64 {
	sum, days := 0, 0
	cutoffKey := cutoff.Format(DateLayout)
	for key, minutes := range totals {
		if key >= cutoffKey {
			sum += minutes
			days++
		}
	}
	if days == 0 {
		return 0
	}
	return round1(float64(sum) / float64(days))
}

// dataPointsSince emits one {date, minutes} point per active day in
// [cutoff, today], ascending. Inactive days are omitted, not zero-filled.
func dataPointsSince(totals map[string]int, cutoff, today time.Time) []TrendPoint {
	points := make([]TrendPoint, 0, weeklyWindowDays+1)
	for day := cutoff; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)
		if minutes, ok := totals[key]; ok {
			points = append(points, TrendPoint{Date: key, Minutes: minutes})
		}
	}
	return points
}

// streakEndingAt walks backwards from today counting consecutive active
// days. A day counts once no matter how many records it holds, and a gap on
// today itself yields 0 regardless of prior history.
func streakEndingAt(totals map[string]int, today time.Time) int {
	streak := 0
	for day := today; ; day = day.AddDate(0, 0, -1) {
		if _, ok := totals[day.Format(DateLayout)]; !ok {
			break
		}
		streak++
	}
	return streak
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
