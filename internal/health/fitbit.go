package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/fitbit"

	"github.com/sandeepkv93/goodmorning/internal/calendar"
)

const (
	DefaultFitbitBaseURL = "https://api.fitbit.com"
	fitbitTimeLayout     = "2006-01-02T15:04:05.000"
)

var ErrFitbitStatus = errors.New("health: unexpected fitbit status")

type sleepResponse struct {
	Sleep []struct {
		DateOfSleep string `json:"dateOfSleep"`
		StartTime   string `json:"startTime"`
		EndTime     string `json:"endTime"`
		IsMainSleep bool   `json:"isMainSleep"`
		TimeInBed   int    `json:"timeInBed"`
	} `json:"sleep"`
}

type FitbitOptions struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	BaseURL      string
	Location     *time.Location
	Logger       *zap.SugaredLogger
}

// FitbitSource queries the Fitbit sleep log with a stored OAuth2 token.
// Refreshed tokens are written back to TokenFile.
type FitbitSource struct {
	mu        sync.Mutex
	conf      *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	baseURL   string
	loc       *time.Location
	log       *zap.SugaredLogger
}

func NewFitbitSource(opts FitbitOptions) (*FitbitSource, error) {
	src := &FitbitSource{
		conf: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     fitbit.Endpoint,
			Scopes:       []string{"sleep"},
		},
		tokenFile: opts.TokenFile,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		loc:       opts.Location,
		log:       opts.Logger,
	}
	if src.baseURL == "" {
		src.baseURL = DefaultFitbitBaseURL
	}
	if src.loc == nil {
		src.loc = time.Local
	}
	if src.log == nil {
		src.log = zap.NewNop().Sugar()
	}
	if opts.TokenFile != "" {
		tok, err := LoadToken(opts.TokenFile)
		if err != nil {
			return nil, err
		}
		src.token = tok
	}
	return src, nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read fitbit token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode fitbit token: %w", err)
	}
	return &tok, nil
}

func SaveToken(path string, tok *oauth2.Token) error {
	payload, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FitbitSource) SetToken(tok *oauth2.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = tok
}

func (f *FitbitSource) IsAvailable(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != nil
}

// QuerySleepSummary reads the sleep log whose date of sleep is date.
// Pass an *http.Client through oauth2.HTTPClient on ctx to override transport.
func (f *FitbitSource) QuerySleepSummary(ctx context.Context, date time.Time) (SleepSummary, bool, error) {
	client, err := f.client(ctx)
	if err != nil || client == nil {
		return SleepSummary{}, false, err
	}

	url := fmt.Sprintf("%s/1.2/user/-/sleep/date/%s.json", f.baseURL, calendar.FormatDate(date))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return SleepSummary{}, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return SleepSummary{}, false, fmt.Errorf("fitbit call failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return SleepSummary{}, false, fmt.Errorf("%w: %d", ErrFitbitStatus, resp.StatusCode)
	}

	var body sleepResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SleepSummary{}, false, fmt.Errorf("decode fitbit response: %w", err)
	}

	samples := make([]Sample, 0, len(body.Sleep))
	for _, entry := range body.Sleep {
		start, err := time.ParseInLocation(fitbitTimeLayout, entry.StartTime, f.loc)
		if err != nil {
			f.log.Debugw("skipping fitbit sleep entry", "start", entry.StartTime, "error", err)
			continue
		}
		end, err := time.ParseInLocation(fitbitTimeLayout, entry.EndTime, f.loc)
		if err != nil {
			f.log.Debugw("skipping fitbit sleep entry", "end", entry.EndTime, "error", err)
			continue
		}
		samples = append(samples, Sample{Start: start, End: end})
	}
	summary, ok := Summarize(samples)
	return summary, ok, nil
}

func (f *FitbitSource) client(ctx context.Context) (*http.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil {
		return nil, nil
	}
	ts := f.conf.TokenSource(ctx, f.token)
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("fitbit token: %w", err)
	}
	if tok.AccessToken != f.token.AccessToken {
		f.token = tok
		if f.tokenFile != "" {
			if err := SaveToken(f.tokenFile, tok); err != nil {
				f.log.Warnw("could not persist refreshed fitbit token", "error", err)
			}
		}
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}
