package thingspeak

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldCount is the number of value fields a ThingSpeak channel carries
const FieldCount = 8

// Field is one raw field value of a feed record. ThingSpeak sends strings or
// null; numbers and other JSON values are kept verbatim so that a malformed
// field degrades to a missing reading instead of failing the whole record.
type Field struct {
	Raw   string
	Valid bool
}

// StringField builds a present field holding s
func StringField(s string) Field {
	return Field{Raw: s, Valid: true}
}

// UnmarshalJSON accepts a JSON string, null or any other value
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = Field{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Field{Raw: s, Valid: true}
		return nil
	}

	*f = Field{Raw: string(data), Valid: true}
	return nil
}

// MarshalJSON encodes the field the way ThingSpeak does
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Raw)
}

// Float parses the field into a reading, nil when it carries no number
func (f Field) Float() *float64 {
	if !f.Valid {
		return nil
	}
	return ParseFloat(f.Raw)
}

// ParseFloat parses a raw field value. Empty strings, "n/a" in any case and
// anything that is not a finite number yield nil.
func ParseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "n/a") {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Feed is one timestamped record of a channel
type Feed struct {
	CreatedAt string `json:"created_at"`
	EntryID   int64  `json:"entry_id"`
	Field1    Field  `json:"field1"`
	Field2    Field  `json:"field2"`
	Field3    Field  `json:"field3"`
	Field4    Field  `json:"field4"`
	Field5    Field  `json:"field5"`
	Field6    Field  `json:"field6"`
	Field7    Field  `json:"field7"`
	Field8    Field  `json:"field8"`
}

// Field returns field i (1-based). Out of range indices yield a missing field.
func (f *Feed) Field(i int) Field {
	switch i {
	case 1:
		return f.Field1
	case 2:
		return f.Field2
	case 3:
		return f.Field3
	case 4:
		return f.Field4
	case 5:
		return f.Field5
	case 6:
		return f.Field6
	case 7:
		return f.Field7
	case 8:
		return f.Field8
	default:
		return Field{}
	}
}

// SetField sets field i (1-based); out of range indices are ignored
func (f *Feed) SetField(i int, v Field) {
	switch i {
	case 1:
		f.Field1 = v
	case 2:
		f.Field2 = v
	case 3:
		f.Field3 = v
	case 4:
		f.Field4 = v
	case 5:
		f.Field5 = v
	case 6:
		f.Field6 = v
	case 7:
		f.Field7 = v
	case 8:
		f.Field8 = v
	}
}

// Timestamp parses CreatedAt
func (f *Feed) Timestamp() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(f.CreatedAt))
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

// Channel is the channel metadata returned alongside the feeds
type Channel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Field1      string `json:"field1"`
	Field2      string `json:"field2"`
	Field3      string `json:"field3"`
	Field4      string `json:"field4"`
	Field5      string `json:"field5"`
	Field6      string `json:"field6"`
	Field7      string `json:"field7"`
	Field8      string `json:"field8"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastEntryID int64  `json:"last_entry_id"`
}

// FeedResponse is the body of a channel feeds request. Feeds are ordered
// oldest to newest.
type FeedResponse struct {
	Channel Channel `json:"channel"`
	Feeds   []Feed  `json:"feeds"`
}

// Latest returns the newest feed record
func (r *FeedResponse) Latest() (*Feed, bool) {
	if r == nil || len(r.Feeds) == 0 {
		return nil, false
	}
	return &r.Feeds[len(r.Feeds)-1], true
}
