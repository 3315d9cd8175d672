// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package request turns raw form fields into a validated AnalysisRequest and
// encodes it for the analysis service.
package request

import (
	"fmt"
	"strings"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Gender of the subject.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Label is the display form used in reports.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "男"
	case GenderFemale:
		return "女"
	default:
		return string(g)
	}
}

// ParseGender accepts the wire values and common aliases.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "男", "乾":
		return GenderMale, true
	case "female", "f", "女", "坤":
		return GenderFemale, true
	default:
		return "", false
	}
}

// Mode selects how much analysis detail the service returns.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeExpert   Mode = "expert"
	ModeDetailed Mode = "detailed"
)

// Modes lists the modes in cycling order.
var Modes = []Mode{ModeGeneral, ModeExpert, ModeDetailed}

// Label is the display form of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeGeneral:
		return "通用分析"
	case ModeExpert:
		return "专家分析"
	case ModeDetailed:
		return "完整详细分析"
	default:
		return string(m)
	}
}

// Next returns the following mode, wrapping around.
func (m Mode) Next() Mode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeGeneral
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGeneral:
		return ModeGeneral, true
	case ModeExpert:
		return ModeExpert, true
	case ModeDetailed:
		return ModeDetailed, true
	default:
		return "", false
	}
}

// Backend selects the interpretation engine on the service side.
type Backend string

const (
	BackendLocal     Backend = "local"
	BackendRemoteAPI Backend = "remote"
)

// WireValue is the llm_option value the service expects.
func (b Backend) WireValue() string {
	if b == BackendRemoteAPI {
		return "claude_api"
	}
	return "local"
}

// Label is the display form of the backend.
func (b Backend) Label() string {
	if b == BackendRemoteAPI {
		return "远程AI分析"
	}
	return "本地AI分析"
}

// ParseBackend accepts local/remote and the wire spellings.
func ParseBackend(s string) (Backend, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return BackendLocal, true
	case "remote", "remoteapi", "remote_api", "claude_api", "api":
		return BackendRemoteAPI, true
	default:
		return "", false
	}
}

// =============================================================================
// ANALYSIS REQUEST
// =============================================================================

// BirthDateTime is a calendar-valid local birth time.
type BirthDateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// String formats as "1990年5月12日 14:30".
func (b BirthDateTime) String() string {
	return fmt.Sprintf("%d年%d月%d日 %02d:%02d", b.Year, b.Month, b.Day, b.Hour, b.Minute)
}

// AnalysisRequest is a validated, fully defaulted submission.
type AnalysisRequest struct {
	Name       string
	Gender     Gender
	Birth      BirthDateTime
	Location   string
	Question   string
	Mode       Mode
	Backend    Backend
	CurrentAge int
}

// LegacyBody is the flat body accepted by /interpret.
type LegacyBody struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	BirthYear   int    `json:"birth_year"`
	BirthMonth  int    `json:"birth_month"`
	BirthDay    int    `json:"birth_day"`
	BirthHour   int    `json:"birth_hour"`
	BirthMinute int    `json:"birth_minute"`
	Location    string `json:"location"`
	Question    string `json:"question"`
}

// BirthInfo is the nested birth block of the v2 API.
type BirthInfo struct {
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Location   string `json:"location"`
	Timezone   string `json:"timezone"`
	Hemisphere string `json:"hemisphere"`
}

// V2Body is the body accepted by the /api/v2 analysis and PDF endpoints.
type V2Body struct {
	BirthInfo  BirthInfo `json:"birth_info"`
	Question   string    `json:"question"`
	Mode       string    `json:"mode"`
	CurrentAge int       `json:"current_age"`
	LLMOption  string    `json:"llm_option"`
}

// LegacyBody encodes r for the flat endpoint.
func (r AnalysisRequest) LegacyBody() LegacyBody {
	return LegacyBody{
		Name:        r.Name,
		Gender:      string(r.Gender),
		BirthYear:   r.Birth.Year,
		BirthMonth:  r.Birth.Month,
		BirthDay:    r.Birth.Day,
		BirthHour:   r.Birth.Hour,
		BirthMinute: r.Birth.Minute,
		Location:    r.Location,
		Question:    r.Question,
	}
}

// V2Body encodes r for the nested endpoints.
func (r AnalysisRequest) V2Body() V2Body {
	return V2Body{
		BirthInfo: BirthInfo{
			Name:       r.Name,
			Gender:     string(r.Gender),
			Year:       r.Birth.Year,
			Month:      r.Birth.Month,
			Day:        r.Birth.Day,
			Hour:       r.Birth.Hour,
			Minute:     r.Birth.Minute,
			Location:   r.Location,
			Timezone:   DefaultTimezone,
			Hemisphere: DefaultHemisphere,
		},
		Question:   r.Question,
		Mode:       string(r.Mode),
		CurrentAge: r.CurrentAge,
		LLMOption:  r.Backend.WireValue(),
	}
}

// Summary is a one-line description for logs and notices.
func (r AnalysisRequest) Summary() string {
	return fmt.Sprintf("%s %s %s %s", r.Name, r.Gender.Label(), r.Birth, r.Location)
}
