// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"strings"
)

// Variant names.
const (
	VariantBasic    = "basic"
	VariantEnhanced = "enhanced"
	VariantLegacy   = "legacy"
)

// Variants lists the known table names.
var Variants = []string{VariantBasic, VariantEnhanced, VariantLegacy}

// TableByName returns the table for a variant name.
func TableByName(name string, g Geometry) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantBasic:
		return BasicTable(g), nil
	case VariantEnhanced:
		return EnhancedTable(g), nil
	case VariantLegacy:
		return LegacyTable(g), nil
	default:
		return Table{}, fmt.Errorf("unknown report variant %q (want one of %s)", name, strings.Join(Variants, ", "))
	}
}

// BasicTable renders the flat result of the /interpret endpoint.
func BasicTable(g Geometry) Table {
	return Table{
		Name: VariantBasic,
		Descriptors: []Descriptor{
			section(IDUserInfo, "用户信息", At(keyUserInfo), userInfoBody),
			section(IDPillars, "八字信息", At(keyPillars), pillarsBody),
			section(IDElementStats, "五行统计", At(keyElements), elementStatsBody(g)),
			section(IDPattern, "格局分析", At(keyPattern), fieldsBody(
				labeled{"格局类型", "格局类型"},
				labeled{"强弱", "强弱"},
				labeled{"根", "根"},
				labeled{"扶抑关系", "扶抑关系"},
			)),
			section(IDClimate, "寒燥分析", At(keyClimate), climateBody(climateLabels{
				kind: "类型", reason: "原因", needed: "需要调候", order: "调候药效顺序",
				sep: " → ", none: EmptyList,
			})),
			section(IDRemedy, "病药体系分析", At(keyRemedy), firstGradeBody),
			section(IDForecast, "大运分析", At(keyForecast), forecastBody),
			section(IDRelations, "五行生克关系", At(keyRelations), relationsSummaryBody),
			section(IDQuestion, "针对性解答", nonEmptyText(keyQuestion), questionBody),
		},
	}
}

// EnhancedTable renders the nested result of the v2 analysis endpoint.
func EnhancedTable(g Geometry) Table {
	return Table{
		Name: VariantEnhanced,
		Descriptors: []Descriptor{
			section(IDPillars, "八字命盘", structured(keyPillars), pillarChart(hiddenRanked)),
			section(IDEnergyPortrait, "能量画像", interpretation("energy_portrait"), textBody),
			section(IDQuestionAnswer, "针对性建议", interpretation("question_answer"), textBody),
			section(IDElementStats, "五行统计", structured(keyElements), elementStatsBody(g)),
			section(IDPattern, "格局分析", structured(keyPattern), fieldsBody(
				labeled{"格局类型", "格局类型"},
				labeled{"强弱", "强弱判定"},
				labeled{"根", "根的状态"},
				labeled{"扶抑关系", "扶抑关系"},
			)),
			section(IDClimate, "寒燥调候分析", structured(keyClimate), climateBody(climateLabels{
				kind: "寒燥类型", reason: "判定原因", needed: "调候需求", order: "药效顺序",
				sep: " > ", none: "无需调候",
			})),
			section(IDRemedy, "病药分级", structured(keyRemedy), remedyGradesTable),
			section(IDForecast, "大运分析", structured(keyForecast), currentForecastBody),
			section(IDRelations, "五行生克关系分析", structured(keyRelations), relationsDetailBody(g)),
			section(IDExpertData, "技术分析数据", structured("专家模式数据"), expertDataBody),
			section(IDAnalysisBadge, "分析模式", At(keyMetadata), analysisBadgeBody),
			section(IDPractice, "调候练习建议", interpretation("practice_suggestions"), textBody),
			section(IDDisclaimer, "免责声明", interpretation("disclaimer"), textBody),
		},
	}
}

// LegacyTable renders the richer flat result of the older guided front-end.
func LegacyTable(g Geometry) Table {
	return Table{
		Name: VariantLegacy,
		Descriptors: []Descriptor{
			section(IDUserInfo, "用户信息", At(keyUserInfo), userInfoBody),
			section(IDPillars, "八字信息", At(keyPillars), pillarChart(hiddenCompact)),
			section(IDDayun, "大运分析", At("大运信息"), dayunBody),
			section(IDJuju, "您的命局类型", At("命局判定"), jujuBody),
			section(IDPortrait, "您的能量画像", At("能量画像"), portraitBody),
			section(IDQuestionAnalysis, "关于您的问题", At("问题分析"), questionAnalysisBody),
			section(IDRelations, "五行能量关系图", At(keyRelations), relationsGraphBody),
			section(IDInspiration, "更高维度的思考", At("启发引导"), inspirationBody),
			section(IDSolution, "破解的关键", At("个性化方案"), solutionBody),
			{ID: IDRemedy, Title: "病药分析", Extract: remedyEither, Render: remedyEitherBlock},
			section(IDElementStats, "五行统计", At(keyElements), elementStatsBody(g)),
			section(IDPlainSummary, "大白话总结", At("大白话说明"), plainSummaryBody),
		},
	}
}
