package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"marketpulse/internal/calendar"
	"marketpulse/internal/logging"
)

type CalendarHandler struct {
	src            calendar.Source
	defaultCountry string
	defaultDays    int
	maxDays        int
	now            func() time.Time
	log            logrus.FieldLogger
}

func NewCalendarHandler(src calendar.Source, defaultCountry string, defaultDays, maxDays int, log logrus.FieldLogger) *CalendarHandler {
	if strings.TrimSpace(defaultCountry) == "" {
		defaultCountry = "AU"
	}
	// zero is a valid same-day-only limit
	if maxDays < 0 {
		maxDays = 365
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CalendarHandler{
		src:            src,
		defaultCountry: strings.ToUpper(strings.TrimSpace(defaultCountry)),
		defaultDays:    defaultDays,
		maxDays:        maxDays,
		now:            time.Now,
		log:            log,
	}
}

type calendarQuery struct {
	CountryCode string      `json:"country_code"`
	DaysAhead   json.Number `json:"days_ahead"`
}

// Handle serves GET ?country_code=&days_ahead= and POST with the same keys as JSON.
func (h *CalendarHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	log := logging.FromContext(ctx, h.log)

	q, err := h.parse(req)
	if err != nil {
		return errResp(400, err.Error())
	}
	country, days, err := h.resolve(q)
	if err != nil {
		return errResp(400, err.Error())
	}

	log = log.WithFields(logrus.Fields{"country_code": country, "days_ahead": days})
	w, err := calendar.ComputeWindow(ctx, country, days, h.now(), h.src)
	if err != nil {
		var fe *calendar.FetchError
		switch {
		case errors.As(err, &fe) && fe.Kind == calendar.CountryNotFound:
			log.Info("unknown country")
			return jsonResp(404, map[string]any{
				"error":          fe.Message(),
				"valid_examples": fe.Suggestions,
			})
		case errors.As(err, &fe):
			log.WithError(err).Warn("holiday source unavailable")
			return errResp(502, fe.Message())
		case errors.Is(err, calendar.ErrNegativeHorizon), errors.Is(err, calendar.ErrHorizonTooLarge):
			return errResp(400, err.Error())
		default:
			log.WithError(err).Error("compute window failed")
			return errResp(500, "internal error")
		}
	}

	log.WithField("trading_days_affected", w.Count).Info("holiday window computed")
	return jsonResp(200, w)
}

func (h *CalendarHandler) parse(req events.APIGatewayV2HTTPRequest) (calendarQuery, error) {
	q := calendarQuery{
		CountryCode: req.QueryStringParameters["country_code"],
		DaysAhead:   json.Number(strings.TrimSpace(req.QueryStringParameters["days_ahead"])),
	}
	if !strings.EqualFold(req.RequestContext.HTTP.Method, "POST") {
		return q, nil
	}

	raw, err := requestBody(req)
	if err != nil {
		return q, fmt.Errorf("invalid body encoding")
	}
	if strings.TrimSpace(string(raw)) == "" {
		return q, nil
	}
	var body calendarQuery
	if err := json.Unmarshal(raw, &body); err != nil {
		return q, fmt.Errorf("invalid JSON body")
	}
	// body keys win over query keys
	if body.CountryCode != "" {
		q.CountryCode = body.CountryCode
	}
	if body.DaysAhead != "" {
		q.DaysAhead = body.DaysAhead
	}
	return q, nil
}

func (h *CalendarHandler) resolve(q calendarQuery) (string, int, error) {
	country := strings.ToUpper(strings.TrimSpace(q.CountryCode))
	if country == "" {
		country = h.defaultCountry
	}

	days := h.defaultDays
	if s := strings.TrimSpace(q.DaysAhead.String()); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > h.maxDays {
			return "", 0, fmt.Errorf("days_ahead must be an integer between 0 and %d", h.maxDays)
		}
		days = n
	}
	return country, days, nil
}
