package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultNagerBaseURL = "https://date.nager.at/api/v3"
	DefaultFetchTimeout = 10 * time.Second
)

// NagerClient implements Source on top of the public Nager.Date API.
type NagerClient struct {
	BaseURL string
	Client  *http.Client
	log     logrus.FieldLogger
}

func NewNagerClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *NagerClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultNagerBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NagerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

func (c *NagerClient) FetchYear(ctx context.Context, year int, countryCode string) ([]HolidayRecord, error) {
	u := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.BaseURL, year, url.PathEscape(countryCode))
	c.log.WithField("url", u).Info("fetching holidays")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build nager request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		c.log.WithError(err).Error("nager request failed")
		return nil, fmt.Errorf("nager fetch %d/%s: %w", year, countryCode, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("nager read body: %w", err)
	}

	if res.StatusCode == http.StatusNotFound {
		c.log.WithField("country_code", countryCode).Warn("no holiday data for country")
		return nil, fmt.Errorf("nager %d/%s: %w", year, countryCode, ErrCountryNotFound)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.log.WithField("status", res.StatusCode).Error("nager api error")
		return nil, &StatusError{Code: res.StatusCode, Body: truncate(string(raw), 200)}
	}

	var items []nagerHoliday
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("nager decode: %w", err)
	}

	out := make([]HolidayRecord, 0, len(items))
	for _, it := range items {
		d, err := ParseDate(it.Date)
		if err != nil {
			return nil, fmt.Errorf("nager record: %w", err)
		}
		out = append(out, HolidayRecord{Date: d, LocalName: it.LocalName, Name: it.Name})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
