package prayer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

type Name string

const (
	Fajr    Name = "fajr"
	Dhuhr   Name = "dhuhr"
	Asr     Name = "asr"
	Maghrib Name = "maghrib"
	Isha    Name = "isha"
)

// Names is the canonical order of the daily prayers.
var Names = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

var arabicNames = map[Name]string{
	Fajr:    "الفجر",
	Dhuhr:   "الظهر",
	Asr:     "العصر",
	Maghrib: "المغرب",
	Isha:    "العشاء",
}

// ArabicName returns the localized display name, falling back to the raw name.
func (n Name) ArabicName() string {
	if s, ok := arabicNames[n]; ok {
		return s
	}
	return string(n)
}

// Unavailable marks a prayer whose time the source did not supply.
const Unavailable = "--:--"

// DateLayout is the calendar-date format used for cache and trigger keys.
const DateLayout = "2006-01-02"

var ErrTimeSource = errors.New("prayer time source failure")

type Schedule struct {
	Times         map[Name]string
	CalendarLabel string
}

type Prayer struct {
	Name Name
	Time string
}

// TimeSource fetches the schedule for the calendar day of date.
type TimeSource interface {
	Fetch(ctx context.Context, date time.Time) (Schedule, error)
}

func (s Schedule) Time(name Name) string {
	t := strings.TrimSpace(s.Times[name])
	if t == "" {
		return Unavailable
	}
	return t
}

// Prayers lists the five prayers in canonical order, including unavailable ones.
func (s Schedule) Prayers() []Prayer {
	out := make([]Prayer, 0, len(Names))
	for _, n := range Names {
		out = append(out, Prayer{Name: n, Time: s.Time(n)})
	}
	return out
}

// MinuteOfDay parses the prayer's HH:MM value. ok is false for unavailable or malformed values.
func (s Schedule) MinuteOfDay(name Name) (int, bool) {
	return ParseClock(s.Time(name))
}

func ParseClock(v string) (int, bool) {
	if v == "" || v == Unavailable {
		return 0, false
	}
	hh, mm, found := strings.Cut(v, ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func MinuteOfDayAt(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// NextPrayer returns the prayer with the smallest strictly positive offset from now.
// When no prayer is still ahead it returns the first prayer in canonical order with
// today's value, which may be Unavailable.
func NextPrayer(s Schedule, now time.Time) Prayer {
	nowMin := MinuteOfDayAt(now)
	prayers := s.Prayers()
	var (
		nearest  = prayers[0]
		bestDiff = -1
	)
	for _, p := range prayers {
		m, ok := ParseClock(p.Time)
		if !ok {
			continue
		}
		diff := m - nowMin
		if diff > 0 && (bestDiff < 0 || diff < bestDiff) {
			bestDiff = diff
			nearest = p
		}
	}
	return nearest
}
