// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"strings"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
	"github.com/jeranaias/bazi-report-tui/internal/request"
)

// Enhanced results nest sections under these keys.
const (
	keyStructured     = "structured_analysis"
	keyInterpretation = "natural_language_interpretation"
	keyMetadata       = "metadata"
)

// Section ids only the enhanced table uses.
const (
	IDEnergyPortrait = "energy_portrait"
	IDQuestionAnswer = "question_answer"
	IDExpertData     = "expert_data"
	IDAnalysisBadge  = "analysis_badge"
	IDPractice       = "practice_suggestions"
	IDDisclaimer     = "disclaimer"
)

func structured(key string) ExtractFunc { return At(keyStructured, key) }

func interpretation(key string) ExtractFunc {
	return nonEmptyText(keyInterpretation, key)
}

func expertDataBody(v payload.Value) string {
	var m md
	m.field("规则依据", v.Get("规则依据").TextOr("N/A"))
	m.field("判定优先级", strings.Join(v.Get("判定优先级").Strings(), ", "))
	audit := v.Get("审计信息")
	if !audit.IsMap() {
		m.field("审计信息", audit.TextOr("N/A"))
		return m.String()
	}
	m.heading("审计信息")
	for _, k := range audit.Keys() {
		m.fieldOf(k, audit.Get(k))
	}
	return m.String()
}

// analysisBadgeBody names the analysis mode and engine of the result.
func analysisBadgeBody(v payload.Value) string {
	modeLabel := request.ModeDetailed.Label()
	if mode, ok := request.ParseMode(v.Get("mode").Text()); ok {
		modeLabel = mode.Label()
	}
	backend := request.BackendLocal
	if v.Get("llm_option").Text() == request.BackendRemoteAPI.WireValue() {
		backend = request.BackendRemoteAPI
	}

	var m md
	m.para("**" + modeLabel + "** | " + backend.Label())
	m.optional("分析时间", v.Get("analysis_time"))
	m.optional("引擎版本", v.Get("engine_version"))
	return m.String()
}
