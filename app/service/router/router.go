package router

import (
	"fmt"
	"strconv"
	"strings"
)

// Intent identifies one of the report pipelines. The values double as the
// context-entry type tags stored per thread.
type Intent string

const (
	IntentInfluencerAnalysis   Intent = "influencer_analysis"
	IntentMonthlyReview        Intent = "monthly_review"
	IntentWeeklyReviewByRange  Intent = "weekly_review_by_range"
	IntentWeeklyReviewByNumber Intent = "weekly_review_by_number"
	IntentInfluencerTrend      Intent = "influencer_trend"
	IntentStrategicPlan        Intent = "strategic_plan"
)

// DefaultYear is assumed whenever the front door did not extract one.
const DefaultYear = 2025

// Request is a fully routed inbound message: an intent plus its typed,
// validated parameter record.
type Request struct {
	Intent    Intent
	Params    any
	ChannelID string
	ThreadTS  string
	UserQuery string
}

type InfluencerParams struct {
	InfluencerName string
	Year           int // 0 means "all years"
}

type MonthlyParams struct {
	Market    string
	MonthAbbr string
	MonthFull string
	Year      int
}

type WeeklyRangeParams struct {
	Market    string
	StartDate string
	EndDate   string
	Year      int
}

type WeeklyNumberParams struct {
	Market     string
	WeekNumber int
	Year       int
}

// TrendParams are all optional; empty fields simply narrow nothing.
type TrendParams struct {
	Market string
	Month  string
	Tier   string
	Year   int
}

// MissingParamError carries the intent-specific user-facing message for an
// absent required routing field.
type MissingParamError struct {
	Key     string
	message string
}

func (e *MissingParamError) Error() string {
	return e.message
}

// Parse converts the front door's loosely-typed parameter mapping into the
// intent's typed record. A missing required key yields a *MissingParamError
// whose message matches what the user should see.
func Parse(intent Intent, params map[string]any) (any, error) {
	switch intent {
	case IntentInfluencerAnalysis:
		name, ok := stringParam(params, "influencer_name")
		if !ok {
			return nil, &MissingParamError{
				Key:     "influencer_name",
				message: "A required parameter was missing: 'influencer_name'",
			}
		}
		return InfluencerParams{
			InfluencerName: name,
			Year:           intParam(params, "year", 0),
		}, nil

	case IntentMonthlyReview, IntentStrategicPlan:
		var result MonthlyParams
		for _, field := range []struct {
			key  string
			dest *string
		}{
			{"market", &result.Market},
			{"month_abbr", &result.MonthAbbr},
			{"month_full", &result.MonthFull},
		} {
			value, ok := stringParam(params, field.key)
			if !ok {
				return nil, missingMonthlyParam(field.key)
			}
			*field.dest = value
		}
		year := intParam(params, "year", 0)
		if year == 0 {
			return nil, missingMonthlyParam("year")
		}
		result.Year = year
		return result, nil

	case IntentWeeklyReviewByRange:
		var result WeeklyRangeParams
		for _, field := range []struct {
			key  string
			dest *string
		}{
			{"market", &result.Market},
			{"start_date", &result.StartDate},
			{"end_date", &result.EndDate},
		} {
			value, ok := stringParam(params, field.key)
			if !ok {
				return nil, &MissingParamError{
					Key:     field.key,
					message: fmt.Sprintf("A required parameter ('%s') was missing for the date range review.", field.key),
				}
			}
			*field.dest = value
		}
		result.Year = intParam(params, "year", DefaultYear)
		return result, nil

	case IntentWeeklyReviewByNumber:
		market, ok := stringParam(params, "market")
		if !ok {
			return nil, missingWeekNumberParam("market")
		}
		week := intParam(params, "week_number", 0)
		if week == 0 {
			return nil, missingWeekNumberParam("week_number")
		}
		return WeeklyNumberParams{
			Market:     market,
			WeekNumber: week,
			Year:       intParam(params, "year", DefaultYear),
		}, nil

	case IntentInfluencerTrend:
		market, _ := stringParam(params, "market")
		month, _ := stringParam(params, "month_full")
		tier, _ := stringParam(params, "tier")
		return TrendParams{
			Market: market,
			Month:  month,
			Tier:   tier,
			Year:   intParam(params, "year", 0),
		}, nil

	default:
		return nil, fmt.Errorf("unknown intent: %s", intent)
	}
}

func missingMonthlyParam(key string) *MissingParamError {
	return &MissingParamError{
		Key:     key,
		message: fmt.Sprintf("A required parameter was missing: '%s'.", key),
	}
}

func missingWeekNumberParam(key string) *MissingParamError {
	return &MissingParamError{
		Key:     key,
		message: fmt.Sprintf("A required parameter ('%s') was missing for the week number review.", key),
	}
}

func stringParam(params map[string]any, key string) (string, bool) {
	value, ok := params[key]
	if !ok || value == nil {
		return "", false
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return "", false
	}

	return str, true
}

func intParam(params map[string]any, key string, fallback int) int {
	value, ok := params[key]
	if !ok || value == nil {
		return fallback
	}

	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}

	return fallback
}
