// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package request

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func validFields() RawFields {
	return RawFields{
		FieldName:       "张三",
		FieldGender:     "male",
		FieldBirthYear:  "1990",
		FieldBirthMonth: "5",
		FieldBirthDay:   "12",
		FieldBirthHour:  "14",
	}
}

func TestBuild_DefaultsApplied(t *testing.T) {
	req, err := NewBuilder(WithClock(fixedNow)).Build(validFields())
	require.NoError(t, err)

	assert.Equal(t, "张三", req.Name)
	assert.Equal(t, GenderMale, req.Gender)
	assert.Equal(t, BirthDateTime{1990, 5, 12, 14, 0}, req.Birth)
	assert.Equal(t, "北京", req.Location)
	assert.Equal(t, "", req.Question)
	assert.Equal(t, ModeGeneral, req.Mode)
	assert.Equal(t, BackendLocal, req.Backend)
	assert.Equal(t, 34, req.CurrentAge)
}

func TestBuild_MissingYearAggregated(t *testing.T) {
	raw := validFields()
	delete(raw, FieldBirthYear)
	raw[FieldGender] = ""

	_, err := Build(raw)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgIncomplete, verr.Message)
	assert.Equal(t, MsgIncomplete, verr.UserMessage())
	assert.Equal(t, []string{FieldGender, FieldBirthYear}, verr.Fields)
}

func TestBuild_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		ok    bool
	}{
		{"year lower bound", FieldBirthYear, "1900", true},
		{"year below", FieldBirthYear, "1899", false},
		{"year above", FieldBirthYear, "2101", false},
		{"month zero", FieldBirthMonth, "0", false},
		{"month 13", FieldBirthMonth, "13", false},
		{"day 31 in May", FieldBirthDay, "31", true},
		{"day 32", FieldBirthDay, "32", false},
		{"hour 0", FieldBirthHour, "0", true},
		{"hour 23", FieldBirthHour, "23", true},
		{"hour 24", FieldBirthHour, "24", false},
		{"minute 59", FieldBirthMinute, "59", true},
		{"minute 60", FieldBirthMinute, "60", false},
		{"non-numeric", FieldBirthYear, "nineteen", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validFields()
			raw[tt.field] = tt.value
			_, err := Build(raw)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				assert.Contains(t, verr.Fields, tt.field)
			}
		})
	}
}

func TestBuild_CalendarDay(t *testing.T) {
	raw := validFields()
	raw[FieldBirthYear], raw[FieldBirthMonth], raw[FieldBirthDay] = "2023", "2", "30"
	_, err := Build(raw)
	require.Error(t, err)

	raw[FieldBirthYear], raw[FieldBirthDay] = "2024", "29"
	_, err = Build(raw)
	assert.NoError(t, err, "leap day")
}

func TestBuild_TimeFieldDecomposed(t *testing.T) {
	raw := validFields()
	delete(raw, FieldBirthHour)
	raw[FieldTime] = "14:30"

	req, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 14, req.Birth.Hour)
	assert.Equal(t, 30, req.Birth.Minute)
}

func TestBuild_ExplicitHourWinsOverTime(t *testing.T) {
	raw := validFields()
	raw[FieldBirthHour] = "8"
	raw[FieldTime] = "14:45"

	req, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 8, req.Birth.Hour)
	assert.Equal(t, 45, req.Birth.Minute)
}

func TestBuild_BadTimeField(t *testing.T) {
	raw := validFields()
	delete(raw, FieldBirthHour)
	raw[FieldTime] = "noon"

	_, err := Build(raw)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{FieldTime}, verr.Fields)
}

func TestBuild_FullWidthDigits(t *testing.T) {
	raw := validFields()
	raw[FieldBirthYear] = "１９９０"
	delete(raw, FieldBirthHour)
	raw[FieldTime] = "０９：０５"

	req, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 1990, req.Birth.Year)
	assert.Equal(t, 9, req.Birth.Hour)
	assert.Equal(t, 5, req.Birth.Minute)
}

func TestBuild_GenderAliases(t *testing.T) {
	for in, want := range map[string]Gender{"男": GenderMale, "F": GenderFemale, "female": GenderFemale} {
		raw := validFields()
		raw[FieldGender] = in
		req, err := Build(raw)
		require.NoError(t, err, in)
		assert.Equal(t, want, req.Gender, in)
	}
}

func TestBuild_QuestionLimit(t *testing.T) {
	raw := validFields()
	long := make([]rune, MaxQuestionLength+1)
	for i := range long {
		long[i] = '问'
	}
	raw[FieldQuestion] = string(long)

	_, err := Build(raw)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MsgQuestionTooLong, verr.Message)

	raw[FieldQuestion] = string(long[:MaxQuestionLength])
	_, err = Build(raw)
	assert.NoError(t, err)
}

func TestBuild_ModeAndBackend(t *testing.T) {
	raw := validFields()
	raw[FieldMode] = "detailed"
	raw[FieldBackend] = "remote"
	req, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, ModeDetailed, req.Mode)
	assert.Equal(t, BackendRemoteAPI, req.Backend)

	raw[FieldMode] = "psychic"
	_, err = Build(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgBadMode)
}

func TestBuild_BuilderDefaults(t *testing.T) {
	b := NewBuilder(WithDefaultLocation("上海"), WithDefaultMode(ModeExpert), WithDefaultBackend(BackendRemoteAPI))
	req, err := b.Build(validFields())
	require.NoError(t, err)
	assert.Equal(t, "上海", req.Location)
	assert.Equal(t, ModeExpert, req.Mode)
	assert.Equal(t, BackendRemoteAPI, req.Backend)
}

func TestBuild_AgeBeforeBirthday(t *testing.T) {
	raw := validFields()
	raw[FieldBirthMonth], raw[FieldBirthDay] = "3", "2"
	req, err := NewBuilder(WithClock(fixedNow)).Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 34, req.CurrentAge)

	raw[FieldBirthYear] = "2030"
	req, err = NewBuilder(WithClock(fixedNow)).Build(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, req.CurrentAge)
}

func TestWireBodies(t *testing.T) {
	raw := validFields()
	raw[FieldQuestion] = "事业发展"
	raw[FieldBackend] = "remote"
	req, err := NewBuilder(WithClock(fixedNow)).Build(raw)
	require.NoError(t, err)

	legacy, err := json.Marshal(req.LegacyBody())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name":"张三","gender":"male","birth_year":1990,"birth_month":5,"birth_day":12,
		"birth_hour":14,"birth_minute":0,"location":"北京","question":"事业发展"
	}`, string(legacy))

	v2, err := json.Marshal(req.V2Body())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"birth_info":{"name":"张三","gender":"male","year":1990,"month":5,"day":12,"hour":14,"minute":0,
			"location":"北京","timezone":"Asia/Shanghai","hemisphere":"north"},
		"question":"事业发展","mode":"general","current_age":34,"llm_option":"claude_api"
	}`, string(v2))
}

func TestModeNext(t *testing.T) {
	assert.Equal(t, ModeExpert, ModeGeneral.Next())
	assert.Equal(t, ModeDetailed, ModeExpert.Next())
	assert.Equal(t, ModeGeneral, ModeDetailed.Next())
}

func TestRawFieldsClone(t *testing.T) {
	raw := validFields()
	c := raw.Clone()
	c[FieldName] = "李四"
	assert.Equal(t, "张三", raw[FieldName])
}
