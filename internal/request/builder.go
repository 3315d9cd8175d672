// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package request

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Raw field keys produced by the form and the CLI flags.
const (
	FieldName        = "name"
	FieldGender      = "gender"
	FieldBirthYear   = "birthYear"
	FieldBirthMonth  = "birthMonth"
	FieldBirthDay    = "birthDay"
	FieldBirthHour   = "birthHour"
	FieldBirthMinute = "birthMinute"
	FieldTime        = "time"
	FieldLocation    = "location"
	FieldQuestion    = "question"
	FieldMode        = "mode"
	FieldBackend     = "backend"
)

// Service-side defaults.
const (
	DefaultLocation   = "北京"
	DefaultTimezone   = "Asia/Shanghai"
	DefaultHemisphere = "north"

	MinYear = 1900
	MaxYear = 2100

	MaxNameLength     = 50
	MaxLocationLength = 100
	MaxQuestionLength = 300
)

// User-facing validation messages.
const (
	MsgIncomplete      = "请填写完整的个人信息"
	MsgNameTooLong     = "姓名长度不能超过50字符"
	MsgLocationTooLong = "出生地点长度不能超过100字符"
	MsgQuestionTooLong = "问题长度不能超过300字符"
	MsgBadMode         = "分析模式无效"
	MsgBadBackend      = "分析引擎无效"
)

// RawFields holds unvalidated form input keyed by the Field* constants.
type RawFields map[string]string

// Clone returns an independent copy.
func (r RawFields) Clone() RawFields {
	out := make(RawFields, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValidationError is returned by Build. Fields lists the offending keys in
// a stable order.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

// UserMessage is the text shown to the user.
func (e *ValidationError) UserMessage() string { return e.Message }

// =============================================================================
// BUILDER
// =============================================================================

// Builder validates RawFields. It is pure apart from the injected clock.
type Builder struct {
	location string
	mode     Mode
	backend  Backend
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDefaultLocation sets the location used when the field is blank.
func WithDefaultLocation(loc string) BuilderOption {
	return func(b *Builder) {
		if loc != "" {
			b.location = loc
		}
	}
}

// WithDefaultMode sets the mode used when the field is blank.
func WithDefaultMode(m Mode) BuilderOption {
	return func(b *Builder) {
		if m != "" {
			b.mode = m
		}
	}
}

// WithDefaultBackend sets the backend used when the field is blank.
func WithDefaultBackend(be Backend) BuilderOption {
	return func(b *Builder) {
		if be != "" {
			b.backend = be
		}
	}
}

// WithClock injects the clock used to derive CurrentAge.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder returns a Builder with service defaults.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		location: DefaultLocation,
		mode:     ModeGeneral,
		backend:  BackendLocal,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build validates raw and returns a defaulted request. Missing or invalid
// personal information yields one *ValidationError naming every bad field.
func (b *Builder) Build(raw RawFields) (AnalysisRequest, error) {
	get := func(key string) string { return clean(raw[key]) }

	var bad []string
	fail := func(field string) { bad = append(bad, field) }

	name := norm.NFC.String(get(FieldName))
	if name == "" {
		fail(FieldName)
	}

	gender, ok := ParseGender(get(FieldGender))
	if !ok {
		fail(FieldGender)
	}

	year, ok := parseRange(get(FieldBirthYear), MinYear, MaxYear)
	if !ok {
		fail(FieldBirthYear)
	}
	month, monthOK := parseRange(get(FieldBirthMonth), 1, 12)
	if !monthOK {
		fail(FieldBirthMonth)
	}
	day, dayOK := parseRange(get(FieldBirthDay), 1, 31)
	if dayOK && monthOK && year != 0 && day > daysIn(year, month) {
		dayOK = false
	}
	if !dayOK {
		fail(FieldBirthDay)
	}

	// An explicit hour wins; the HH:MM field fills whatever is missing.
	hourText, minuteText := get(FieldBirthHour), get(FieldBirthMinute)
	if t := get(FieldTime); t != "" {
		h, m, ok := splitClock(t)
		if !ok {
			fail(FieldTime)
		}
		if hourText == "" {
			hourText = h
		}
		if minuteText == "" {
			minuteText = m
		}
	}
	hour, ok := parseRange(hourText, 0, 23)
	if !ok && !contains(bad, FieldTime) {
		fail(FieldBirthHour)
	}
	minute := 0
	if minuteText != "" {
		if minute, ok = parseRange(minuteText, 0, 59); !ok {
			fail(FieldBirthMinute)
		}
	}

	if len(bad) > 0 {
		return AnalysisRequest{}, &ValidationError{Message: MsgIncomplete, Fields: bad}
	}

	if len([]rune(name)) > MaxNameLength {
		return AnalysisRequest{}, &ValidationError{Message: MsgNameTooLong, Fields: []string{FieldName}}
	}

	location := norm.NFC.String(get(FieldLocation))
	if location == "" {
		location = b.location
	}
	if len([]rune(location)) > MaxLocationLength {
		return AnalysisRequest{}, &ValidationError{Message: MsgLocationTooLong, Fields: []string{FieldLocation}}
	}

	// The question keeps its inner spacing; only the edges are trimmed.
	question := strings.TrimSpace(raw[FieldQuestion])
	if len([]rune(question)) > MaxQuestionLength {
		return AnalysisRequest{}, &ValidationError{Message: MsgQuestionTooLong, Fields: []string{FieldQuestion}}
	}

	mode := b.mode
	if s := get(FieldMode); s != "" {
		if mode, ok = ParseMode(s); !ok {
			return AnalysisRequest{}, &ValidationError{Message: MsgBadMode, Fields: []string{FieldMode}}
		}
	}
	backend := b.backend
	if s := get(FieldBackend); s != "" {
		if backend, ok = ParseBackend(s); !ok {
			return AnalysisRequest{}, &ValidationError{Message: MsgBadBackend, Fields: []string{FieldBackend}}
		}
	}

	birth := BirthDateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute}
	return AnalysisRequest{
		Name:       name,
		Gender:     gender,
		Birth:      birth,
		Location:   location,
		Question:   question,
		Mode:       mode,
		Backend:    backend,
		CurrentAge: ageAt(birth, b.now()),
	}, nil
}

// Build validates raw with a default Builder.
func Build(raw RawFields) (AnalysisRequest, error) {
	return NewBuilder().Build(raw)
}

// =============================================================================
// HELPERS
// =============================================================================

// clean trims and folds full-width input (１９９０, １４：３０) to ASCII.
func clean(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}

func parseRange(s string, lo, hi int) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// splitClock splits "HH:MM" (or "H:MM", "HH") into its parts.
func splitClock(s string) (hour, minute string, ok bool) {
	h, m, found := strings.Cut(s, ":")
	h, m = strings.TrimSpace(h), strings.TrimSpace(m)
	if h == "" || (found && m == "") {
		return "", "", false
	}
	if _, err := strconv.Atoi(h); err != nil {
		return "", "", false
	}
	if found {
		if _, err := strconv.Atoi(m); err != nil {
			return "", "", false
		}
	}
	return h, m, true
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func ageAt(b BirthDateTime, now time.Time) int {
	age := now.Year() - b.Year
	if int(now.Month()) < b.Month || (int(now.Month()) == b.Month && now.Day() < b.Day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
