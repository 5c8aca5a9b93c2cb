package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/timeseries"
)

// store keys, one JSON array per collection
const (
	KeyHabits         = "habits"
	KeyCompletions    = "habits:completions"
	KeyWorkouts       = "workouts:log"
	KeyMeals          = "nutrition:meals"
	KeyWater          = "nutrition:water"
	KeyTimeBlocks     = "schedule:blocks"
	KeyCalendarEvents = "calendar:events"
	KeyBooks          = "books:notes"
)

// Number is a float that also decodes from a numeric string ("42.5"),
// the way decimal columns are usually serialized.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse number [%s]: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type Habit struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type HabitCompletion struct {
	ID          string     `json:"id,omitempty"`
	HabitID     string     `json:"habitId"`
	Date        string     `json:"date"`
	Completed   *bool      `json:"completed,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (c HabitCompletion) DateKey() string { return c.Date }

// IsCompleted treats a completion without an explicit flag as done;
// most producers only store a row when the habit was completed.
func (c HabitCompletion) IsCompleted() bool {
	return c.Completed == nil || *c.Completed
}

type WorkoutSet struct {
	ID         string     `json:"id,omitempty"`
	Date       string     `json:"date"`
	Exercise   string     `json:"exercise"`
	Sets       int        `json:"sets"`
	Reps       int        `json:"reps"`
	Weight     Number     `json:"weight"`
	BodyWeight *Number    `json:"bodyWeight,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

func (w WorkoutSet) DateKey() string { return w.Date }

// Volume is weight x reps x sets.
func (w WorkoutSet) Volume() float64 {
	return float64(w.Weight) * float64(w.Reps) * float64(w.Sets)
}

type Meal struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Kcal     Number `json:"kcal"`
	Protein  Number `json:"protein"`
	MealType string `json:"mealType,omitempty"`
}

func (m Meal) DateKey() string { return m.Date }

type WaterLog struct {
	ID   string `json:"id,omitempty"`
	Date string `json:"date"`
	Ml   Number `json:"ml"`
}

func (w WaterLog) DateKey() string { return w.Date }

// TimeBlock is a scheduled block of the day, e.g. a work block from 09:00 to 12:30.
type TimeBlock struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
	Title    string `json:"title,omitempty"`
}

func (b TimeBlock) DateKey() string { return b.Date }

// Span resolves the block to instants in loc. The end must be after the start.
func (b TimeBlock) Span(loc *time.Location) (start, end time.Time, err error) {
	day, err := timeseries.ParseDay(b.Date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startMin, err := timeseries.ParseClock(b.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMin, err := timeseries.ParseClock(b.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endMin <= startMin {
		return time.Time{}, time.Time{}, fmt.Errorf("block [%s] ends before it starts", b.ID)
	}
	return timeseries.At(day, startMin, loc), timeseries.At(day, endMin, loc), nil
}

type CalendarEvent struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	Category        string `json:"category,omitempty"`
	Completed       bool   `json:"completed"`
	ReminderMinutes *int   `json:"reminderMinutes,omitempty"`
}

// calendarEventAliases are the other names producers store event fields under.
type calendarEventAliases struct {
	Reminder          *Number `json:"reminder"`
	ReminderTime      *Number `json:"reminderTime"`
	ReminderTimeSnake *Number `json:"reminder_time"`
	IsCompleted       *bool   `json:"isCompleted"`
	Type              string  `json:"type"`
}

func (e *CalendarEvent) UnmarshalJSON(data []byte) error {
	type plain CalendarEvent
	var decoded struct {
		plain
		calendarEventAliases
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*e = CalendarEvent(decoded.plain)
	aliases := decoded.calendarEventAliases
	if e.ReminderMinutes == nil {
		for _, lead := range []*Number{aliases.ReminderTime, aliases.ReminderTimeSnake, aliases.Reminder} {
			if lead != nil {
				minutes := int(*lead)
				e.ReminderMinutes = &minutes
				break
			}
		}
	}
	if aliases.IsCompleted != nil && *aliases.IsCompleted {
		e.Completed = true
	}
	if strings.TrimSpace(e.Category) == "" {
		e.Category = aliases.Type
	}
	return nil
}

func (e CalendarEvent) DateKey() string { return e.Date }

// At returns the event start in loc; ok is false for all-day events or a bad time.
func (e CalendarEvent) At(loc *time.Location) (t time.Time, ok bool) {
	if strings.TrimSpace(e.Time) == "" {
		return time.Time{}, false
	}
	day, err := timeseries.ParseDay(e.Date)
	if err != nil {
		return time.Time{}, false
	}
	minute, err := timeseries.ParseClock(e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return timeseries.At(day, minute, loc), true
}

type BookStatus string

const (
	BookReading   BookStatus = "reading"
	BookCompleted BookStatus = "completed"
	BookToRead    BookStatus = "to-read"
)

type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Rating      int        `json:"rating"`
	Status      BookStatus `json:"status"`
	Pages       int        `json:"pages"`
	CurrentPage int        `json:"currentPage"`
	DateRead    string     `json:"dateRead,omitempty"`
}

func (b Book) DateKey() string { return b.DateRead }
