package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSummarizeSpansSamples(t *testing.T) {
	base := time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)
	got, ok := Summarize([]Sample{
		{Start: base.Add(2 * time.Hour), End: base.Add(5 * time.Hour)},
		{Start: base, End: base.Add(3 * time.Hour)},
		{Start: base.Add(6 * time.Hour), End: base.Add(8*time.Hour + 20*time.Second)},
	})
	if !ok {
		t.Fatal("expected a summary")
	}
	if !got.Bedtime.Equal(base) || !got.WakeUpTime.Equal(base.Add(8*time.Hour+20*time.Second)) {
		t.Fatalf("unexpected span: %+v", got)
	}
	if got.TotalMinutes != 480 {
		t.Fatalf("expected 480 minutes, got %d", got.TotalMinutes)
	}
	if _, ok := Summarize(nil); ok {
		t.Fatal("expected no summary for no samples")
	}
}

func TestNoopSourceIsUnavailable(t *testing.T) {
	var src Source = NoopSource{}
	if src.IsAvailable(context.Background()) {
		t.Fatal("noop source should be unavailable")
	}
	if _, ok, err := src.QuerySleepSummary(context.Background(), time.Now()); ok || err != nil {
		t.Fatalf("unexpected noop result ok=%v err=%v", ok, err)
	}
}

func TestFitbitSourceQueriesSleepLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.2/user/-/sleep/date/2026-02-09.json" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sleep":[
			{"dateOfSleep":"2026-02-09","startTime":"2026-02-09T03:00:00.000","endTime":"2026-02-09T06:58:00.000","isMainSleep":false},
			{"dateOfSleep":"2026-02-09","startTime":"2026-02-08T23:30:00.000","endTime":"2026-02-09T02:40:00.000","isMainSleep":true}
		]}`))
	}))
	defer srv.Close()

	src, err := NewFitbitSource(FitbitOptions{BaseURL: srv.URL, Location: time.UTC})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if src.IsAvailable(context.Background()) {
		t.Fatal("source without token should be unavailable")
	}
	src.SetToken(&oauth2.Token{AccessToken: "token-1", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())
	got, ok, err := src.QuerySleepSummary(ctx, time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC))
	if err != nil || !ok {
		t.Fatalf("query: ok=%v err=%v", ok, err)
	}
	if got.WakeUpTime != time.Date(2026, 2, 9, 6, 58, 0, 0, time.UTC) {
		t.Fatalf("unexpected wake time: %s", got.WakeUpTime)
	}
	if got.Bedtime != time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC) || got.TotalMinutes != 448 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestFitbitSourceReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src, err := NewFitbitSource(FitbitOptions{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	src.SetToken(&oauth2.Token{AccessToken: "token-1", Expiry: time.Now().Add(time.Hour)})
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, srv.Client())
	if _, _, err := src.QuerySleepSummary(ctx, time.Now()); err == nil {
		t.Fatal("expected status error")
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitbit.json")
	if tok, err := LoadToken(path); err != nil || tok != nil {
		t.Fatalf("missing file should yield nil token, got %v %v", tok, err)
	}
	if err := SaveToken(path, &oauth2.Token{AccessToken: "abc", RefreshToken: "def"}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	src, err := NewFitbitSource(FitbitOptions{TokenFile: path})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if !src.IsAvailable(context.Background()) {
		t.Fatal("expected stored token to make the source available")
	}
}
