package calendar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNagerClient_FetchYear(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-01","localName":"New Year's Day","name":"New Year's Day","countryCode":"AU"},
			{"date":"2025-01-27","localName":"Australia Day","name":"Australia Day","countryCode":"AU"}
		]`))
	}))
	defer srv.Close()

	c := NewNagerClient(srv.URL+"/", time.Second, quietLogger())
	recs, err := c.FetchYear(context.Background(), 2025, "AU")
	require.NoError(t, err)

	assert.Equal(t, "/PublicHolidays/2025/AU", gotPath)
	require.Len(t, recs, 2)
	assert.Equal(t, NewDate(2025, time.January, 27), recs[1].Date)
	assert.Equal(t, "Australia Day", recs[1].LocalName)
}

func TestNagerClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewNagerClient(srv.URL, time.Second, quietLogger()).FetchYear(context.Background(), 2025, "ZZ")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestNagerClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewNagerClient(srv.URL, time.Second, quietLogger()).FetchYear(context.Background(), 2025, "AU")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.NotErrorIs(t, err, ErrCountryNotFound)
}

func TestNagerClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewNagerClient(url, time.Second, quietLogger()).FetchYear(context.Background(), 2025, "AU")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCountryNotFound)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestNagerClient_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"date":"01/01/2025","localName":"x"}]`))
	}))
	defer srv.Close()

	_, err := NewNagerClient(srv.URL, time.Second, quietLogger()).FetchYear(context.Background(), 2025, "AU")
	require.Error(t, err)
}

func TestNagerClient_Defaults(t *testing.T) {
	c := NewNagerClient("", 0, nil)
	assert.Equal(t, DefaultNagerBaseURL, c.BaseURL)
	assert.Equal(t, DefaultFetchTimeout, c.Client.Timeout)
}

func TestComputeWindow_WithNagerClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/PublicHolidays/2025/US":
			_, _ = w.Write([]byte(`[{"date":"2025-12-25","localName":"Christmas Day"}]`))
		case "/PublicHolidays/2026/US":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewNagerClient(srv.URL, time.Second, quietLogger())
	_, err := ComputeWindow(context.Background(), "US", 7, at(2025, time.December, 28), c)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourceUnavailable, fe.Kind)
	assert.Equal(t, "Holiday API returned 500", fe.Message())
}
