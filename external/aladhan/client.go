package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/adhan/internal/prayer"
)

type Client struct {
	baseURL   string
	latitude  float64
	longitude float64
	method    int
	client    *http.Client
}

type Options struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Method    int
	Timeout   time.Duration
}

func NewClient(opts Options) prayer.TimeSource {
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		latitude:  opts.Latitude,
		longitude: opts.Longitude,
		method:    opts.Method,
		client:    &http.Client{Timeout: opts.Timeout},
	}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Hijri hijriDate `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

type hijriDate struct {
	Day     string `json:"day"`
	Year    string `json:"year"`
	Weekday struct {
		Ar string `json:"ar"`
	} `json:"weekday"`
	Month struct {
		Ar string `json:"ar"`
	} `json:"month"`
}

var timingKeys = map[prayer.Name]string{
	prayer.Fajr:    "Fajr",
	prayer.Dhuhr:   "Dhuhr",
	prayer.Asr:     "Asr",
	prayer.Maghrib: "Maghrib",
	prayer.Isha:    "Isha",
}

func (c *Client) Fetch(ctx context.Context, date time.Time) (prayer.Schedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.timingsURL(date), nil)
	if err != nil {
		return prayer.Schedule{}, fmt.Errorf("%w: %w", prayer.ErrTimeSource, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return prayer.Schedule{}, fmt.Errorf("%w: %w", prayer.ErrTimeSource, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return prayer.Schedule{}, fmt.Errorf("%w: timings returned status %d", prayer.ErrTimeSource, resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return prayer.Schedule{}, fmt.Errorf("%w: decode timings: %w", prayer.ErrTimeSource, err)
	}
	if body.Data.Timings == nil {
		return prayer.Schedule{}, fmt.Errorf("%w: response has no timings", prayer.ErrTimeSource)
	}
	return toSchedule(body), nil
}

func (c *Client) timingsURL(date time.Time) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("method", strconv.Itoa(c.method))
	return c.baseURL + "/timings/" + date.Format("02-01-2006") + "?" + q.Encode()
}

func toSchedule(body timingsResponse) prayer.Schedule {
	times := make(map[prayer.Name]string, len(timingKeys))
	for name, key := range timingKeys {
		times[name] = cleanClock(body.Data.Timings[key])
	}
	return prayer.Schedule{
		Times:         times,
		CalendarLabel: hijriLabel(body.Data.Date.Hijri),
	}
}

// cleanClock keeps the leading HH:MM of values such as "05:10 (EEST)".
func cleanClock(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return prayer.Unavailable
	}
	return fields[0]
}

func hijriLabel(h hijriDate) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{h.Weekday.Ar, h.Day, h.Month.Ar, h.Year} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
