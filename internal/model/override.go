package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DayOverride replaces the default wake time on one weekday.
// It is either Off or Custom; a nil DayOverride means no override.
type DayOverride interface {
	isDayOverride()
}

// Off disables the alarm on its weekday.
type Off struct{}

// Custom rings at Time instead of the default.
type Custom struct {
	Time AlarmTime
}

func (Off) isDayOverride()    {}
func (Custom) isDayOverride() {}

// DayOverrides is indexed by time.Weekday (0=Sunday).
type DayOverrides [7]DayOverride

func (d DayOverrides) Get(day time.Weekday) DayOverride {
	if day < time.Sunday || day > time.Saturday {
		return nil
	}
	return d[day]
}

func (d DayOverrides) With(day time.Weekday, o DayOverride) DayOverrides {
	if day >= time.Sunday && day <= time.Saturday {
		d[day] = o
	}
	return d
}

func (d DayOverrides) Without(day time.Weekday) DayOverrides {
	return d.With(day, nil)
}

func (d DayOverrides) Validate() error {
	for i, o := range d {
		switch v := o.(type) {
		case nil, Off:
		case Custom:
			if err := v.Time.Validate(); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidOverride, time.Weekday(i), err)
			}
		default:
			return fmt.Errorf("%w: %s: %T", ErrInvalidOverride, time.Weekday(i), o)
		}
	}
	return nil
}

type dayOverrideJSON struct {
	Type string     `json:"type"`
	Time *AlarmTime `json:"time,omitempty"`
}

// MarshalJSON writes the sparse {"<weekday>": {"type": ...}} form.
func (d DayOverrides) MarshalJSON() ([]byte, error) {
	out := make(map[string]dayOverrideJSON)
	for i, o := range d {
		key := strconv.Itoa(i)
		switch v := o.(type) {
		case nil:
		case Off:
			out[key] = dayOverrideJSON{Type: "off"}
		case Custom:
			tm := v.Time
			out[key] = dayOverrideJSON{Type: "custom", Time: &tm}
		default:
			return nil, fmt.Errorf("%w: %T", ErrInvalidOverride, o)
		}
	}
	return json.Marshal(out)
}

func (d *DayOverrides) UnmarshalJSON(raw []byte) error {
	var in map[string]dayOverrideJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	var out DayOverrides
	for key, v := range in {
		day, err := strconv.Atoi(key)
		if err != nil || day < 0 || day > 6 {
			return fmt.Errorf("%w: weekday key %q", ErrInvalidOverride, key)
		}
		switch v.Type {
		case "off":
			out[day] = Off{}
		case "custom":
			if v.Time == nil {
				return fmt.Errorf("%w: custom override without time", ErrInvalidOverride)
			}
			out[day] = Custom{Time: *v.Time}
		default:
			return fmt.Errorf("%w: type %q", ErrInvalidOverride, v.Type)
		}
	}
	*d = out
	return nil
}
