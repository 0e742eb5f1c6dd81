package api

import (
	"time"

	"example.com/daytracker/internal/domain"
)

// UserView exposes account details without credentials.
type UserView struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Age       *int       `json:"age,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserView `json:"user"`
}

// CategoryView is one registry entry with display metadata.
type CategoryView struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CategoriesResponse packages the ordered category registry.
type CategoriesResponse struct {
	Categories []CategoryView `json:"categories"`
}

// ActivityView exposes full details about an activity record.
type ActivityView struct {
	ActivityID      string    `json:"activity_id"`
	UserID          string    `json:"user_id"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	MoodRating      *int      `json:"mood_rating,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	ActivityDate    string    `json:"activity_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CategorySummaryView is the per-category slice of a daily summary.
type CategorySummaryView struct {
	Category        string   `json:"category"`
	DurationMinutes int      `json:"duration_minutes"`
	EntryCount      int      `json:"entry_count"`
	AverageMood     *float64 `json:"average_mood"`
	Percentage      float64  `json:"percentage"`
}

// DailySummaryResponse is the body of GET /analytics/daily-summary.
type DailySummaryResponse struct {
	Date                 string                `json:"date"`
	TotalLoggedMinutes   int                   `json:"total_logged_minutes"`
	CompletionPercentage float64               `json:"completion_percentage"`
	Categories           []CategorySummaryView `json:"categories"`
}

// TrendPointView is one day's total minutes for a category.
type TrendPointView struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// TrendEntryView reports rolling statistics for one category.
type TrendEntryView struct {
	Category       string           `json:"category"`
	WeeklyAverage  float64          `json:"weekly_average"`
	MonthlyAverage float64          `json:"monthly_average"`
	StreakDays     int              `json:"streak_days"`
	DataPoints     []TrendPointView `json:"data_points"`
}

// TrendsResponse is the body of GET /analytics/trends.
type TrendsResponse struct {
	Trends []TrendEntryView `json:"trends"`
}

func toUserView(user domain.User) UserView {
	return UserView{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Age:       user.Age,
		Gender:    user.Gender,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

func toActivityView(record domain.ActivityRecord) ActivityView {
	return ActivityView{
		ActivityID:      record.ID,
		UserID:          record.UserID,
		Category:        string(record.Category),
		DurationMinutes: record.DurationMinutes,
		Notes:           record.Notes,
		MoodRating:      record.MoodRating,
		PhotoURL:        record.PhotoURL,
		ActivityDate:    record.ActivityDate.Format(domain.DateLayout),
		CreatedAt:       record.CreatedAt,
	}
}

func toActivityViews(records []domain.ActivityRecord) []ActivityView {
	items := make([]ActivityView, 0, len(records))
	for _, record := range records {
		items = append(items, toActivityView(record))
	}
	return items
}

func toDailySummaryView(summary domain.DailySummary) DailySummaryResponse {
	categories := make([]CategorySummaryView, 0, len(summary.Categories))
	for _, entry := range summary.Categories {
		categories = append(categories, CategorySummaryView{
			Category:        string(entry.Category),
			DurationMinutes: entry.DurationMinutes,
			EntryCount:      entry.EntryCount,
			AverageMood:     entry.AverageMood,
			Percentage:      entry.Percentage,
		})
	}
	return DailySummaryResponse{
		Date:                 summary.Date,
		TotalLoggedMinutes:   summary.TotalLoggedMinutes,
		CompletionPercentage: summary.CompletionPercentage,
		Categories:           categories,
	}
}

func toTrendsView(entries []domain.TrendEntry) TrendsResponse {
	trends := make([]TrendEntryView, 0, len(entries))
	for _, entry := range entries {
		points := make([]TrendPointView, 0, len(entry.DataPoints))
		for _, point := range entry.DataPoints {
			points = append(points, TrendPointView{Date: point.Date, Minutes: point.Minutes})
		}
		trends = append(trends, TrendEntryView{
			Category:       string(entry.Category),
			WeeklyAverage:  entry.WeeklyAverage,
			MonthlyAverage: entry.MonthlyAverage,
			StreakDays:     entry.StreakDays,
			DataPoints:     points,
		})
	}
	return TrendsResponse{Trends: trends}
}
