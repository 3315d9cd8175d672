// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// fieldFlagSpec maps CLI flags to request fields.
var fieldFlagSpec = []struct {
	flag  string
	key   string
	usage string
}{
	{"name", request.FieldName, "name (姓名)"},
	{"gender", request.FieldGender, "gender: male, female, 男 or 女"},
	{"year", request.FieldBirthYear, "birth year, 1900-2100"},
	{"month", request.FieldBirthMonth, "birth month, 1-12"},
	{"day", request.FieldBirthDay, "birth day of month"},
	{"hour", request.FieldBirthHour, "birth hour, 0-23 (wins over --time)"},
	{"minute", request.FieldBirthMinute, "birth minute, 0-59"},
	{"time", request.FieldTime, "birth time as HH:MM"},
	{"location", request.FieldLocation, "birthplace (default from config)"},
	{"question", request.FieldQuestion, "question for the reading"},
	{"mode", request.FieldMode, "analysis mode: general, expert or detailed"},
	{"backend", request.FieldBackend, "interpretation backend: local or remote"},
}

// fieldFlags collects the birth-data flags of one command.
type fieldFlags struct {
	values map[string]*string
}

func (f *fieldFlags) bind(fs *pflag.FlagSet) {
	f.values = make(map[string]*string, len(fieldFlagSpec))
	for _, spec := range fieldFlagSpec {
		f.values[spec.key] = fs.String(spec.flag, "", spec.usage)
	}
}

// raw returns the non-empty flag values keyed by request field.
func (f *fieldFlags) raw() request.RawFields {
	raw := request.RawFields{}
	for key, v := range f.values {
		if s := strings.TrimSpace(*v); s != "" {
			raw[key] = s
		}
	}
	return raw
}

// flagFor returns the flag name of a request field, for error messages.
func flagFor(key string) string {
	for _, spec := range fieldFlagSpec {
		if spec.key == key {
			return "--" + spec.flag
		}
	}
	return key
}

func flagNames(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = flagFor(k)
	}
	return out
}
