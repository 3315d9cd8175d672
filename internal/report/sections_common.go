// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
)

// Section ids shared across tables.
const (
	IDUserInfo     = "user_info"
	IDPillars      = "pillars"
	IDElementStats = "element_stats"
	IDPattern      = "pattern"
	IDClimate      = "climate"
	IDRemedy       = "remedy"
	IDForecast     = "forecast"
	IDRelations    = "relations"
	IDQuestion     = "question"
)

// Service keys of the analysis sections.
const (
	keyUserInfo  = "用户信息"
	keyPillars   = "bazi"
	keyElements  = "五行统计"
	keyPattern   = "定格局"
	keyClimate   = "定寒燥"
	keyRemedy    = "定病药"
	keyForecast  = "看大运"
	keyRelations = "五行生克关系"
	keyQuestion  = "问题"

	keyStrongest = "最旺"
	keyWeakest   = "最弱"
)

var pillarKeys = []struct{ key, label string }{
	{"year", "年柱"},
	{"month", "月柱"},
	{"day", "日柱"},
	{"hour", "时柱"},
}

// remedyRanks orders remedy maps: principal, minister, secondary, assistant, envoy.
var remedyRanks = []string{"君药", "臣药", "次药", "佐药", "使药"}

// labeled is a service key with its display label.
type labeled struct{ key, label string }

// fieldsBody renders the given keys as fields, placeholders for blanks.
func fieldsBody(fields ...labeled) func(payload.Value) string {
	return func(v payload.Value) string {
		var m md
		for _, f := range fields {
			m.fieldOf(f.label, v.Get(f.key))
		}
		return m.String()
	}
}

// textBody renders a free-text section.
func textBody(v payload.Value) string {
	var m md
	m.paraOf(v)
	return m.String()
}

// =============================================================================
// USER INFO AND PILLARS
// =============================================================================

var userInfoBody = fieldsBody(
	labeled{"姓名", "姓名"},
	labeled{"性别", "性别"},
	labeled{"出生时间", "出生时间"},
	labeled{"出生地点", "出生地点"},
)

func pillarsBody(v payload.Value) string {
	var m md
	for _, p := range pillarKeys {
		m.fieldOf(p.label, v.Get(p.key))
	}
	return m.String()
}

// hiddenStyle selects how hidden stems are written in the pillar chart.
type hiddenStyle int

const (
	// hiddenRanked writes every stem with its rank: 丁主 己中.
	hiddenRanked hiddenStyle = iota
	// hiddenCompact writes the main stem with the rest in brackets: 丁(己).
	hiddenCompact
)

func formatHidden(branch rune, style hiddenStyle) string {
	stems := HiddenStems(branch)
	if len(stems) == 0 {
		return Placeholder
	}
	if style == hiddenCompact {
		s := string(stems[0].Stem)
		if len(stems) > 1 {
			rest := make([]rune, 0, len(stems)-1)
			for _, h := range stems[1:] {
				rest = append(rest, h.Stem)
			}
			s += "(" + string(rest) + ")"
		}
		return s
	}
	parts := make([]string, len(stems))
	for i, h := range stems {
		parts[i] = string(h.Stem) + h.Kind.Label()
	}
	return strings.Join(parts, " ")
}

// pillarChart renders the four pillars as a stem/branch/element/hidden grid.
func pillarChart(style hiddenStyle) func(payload.Value) string {
	return func(v payload.Value) string {
		header := []string{"四柱"}
		stems := []string{"天干"}
		branches := []string{"地支"}
		elements := []string{"五行"}
		hidden := []string{"藏干"}

		for _, p := range pillarKeys {
			header = append(header, p.label)
			s, _ := v.Get(p.key).Str()
			stem, branch, ok := splitPillar(s)
			if !ok {
				stems = append(stems, Placeholder)
				branches = append(branches, Placeholder)
				elements = append(elements, Placeholder)
				hidden = append(hidden, Placeholder)
				continue
			}
			stems = append(stems, string(stem))
			branches = append(branches, string(branch))
			elements = append(elements, runeElementLabel(stem)+"/"+runeElementLabel(branch))
			hidden = append(hidden, formatHidden(branch, style))
		}

		var m md
		m.table(header, [][]string{stems, branches, elements, hidden})
		return m.String()
	}
}

func runeElementLabel(r rune) string {
	if e, ok := ElementOf(r); ok {
		return ElementLabel(e)
	}
	return "?"
}

// =============================================================================
// ELEMENT STATISTICS
// =============================================================================

type elementCount struct {
	code  string
	label string
	count float64
}

// elementCounts returns the five canonical elements in order followed by any
// unknown keys sorted. Keys may be codes or labels.
func elementCounts(v payload.Value) []elementCount {
	byCode := make(map[string]float64, len(ElementOrder))
	var extra []string
	for _, k := range v.Keys() {
		if k == keyStrongest || k == keyWeakest {
			continue
		}
		if code, ok := ElementCode(k); ok {
			byCode[code] += v.Get(k).FloatOr(0)
			continue
		}
		extra = append(extra, k)
	}

	out := make([]elementCount, 0, len(ElementOrder)+len(extra))
	for _, code := range ElementOrder {
		out = append(out, elementCount{code: code, label: ElementLabel(code), count: byCode[code]})
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, elementCount{code: k, label: ElementLabel(k), count: v.Get(k).FloatOr(0)})
	}
	return out
}

// elementStatsBody renders one bar per element with strongest and weakest
// badges. Percentages and bar lengths are derived here from the counts.
func elementStatsBody(g Geometry) func(payload.Value) string {
	return func(v payload.Value) string {
		counts := elementCounts(v)
		var total, peak float64
		for _, c := range counts {
			total += c.count
			if c.count > peak {
				peak = c.count
			}
		}

		strongest := v.Get(keyStrongest).Text()
		weakest := v.Get(keyWeakest).Text()
		strongMarked, weakMarked := false, false

		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			badge := ""
			if !strongMarked && SameElement(c.code, strongest) {
				badge += "【最旺】"
				strongMarked = true
			}
			if !weakMarked && SameElement(c.code, weakest) {
				badge += "【最弱】"
				weakMarked = true
			}
			rows = append(rows, []string{
				c.label,
				bar(c.count, peak, g.barWidth()),
				fmt.Sprintf("%.1f", c.count),
				percentOf(c.count, total),
				badge,
			})
		}

		var m md
		m.code(alignRows(rows))
		m.field("最旺", elementOrPlaceholder(strongest))
		m.field("最弱", elementOrPlaceholder(weakest))
		return m.String()
	}
}

func elementOrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return ElementLabel(s)
}

// =============================================================================
// PATTERN, CLIMATE, REMEDY
// =============================================================================

// elementList maps every entry through the shared label table.
func elementList(v payload.Value) []string {
	items := v.Strings()
	for i, s := range items {
		items[i] = ElementLabel(s)
	}
	return items
}

type climateLabels struct {
	kind, reason, needed, order string
	sep, none                   string
}

func climateBody(l climateLabels) func(payload.Value) string {
	return func(v payload.Value) string {
		var m md
		m.fieldOf(l.kind, v.Get("类型"))
		m.fieldOf(l.reason, v.Get("原因"))
		m.fieldOf(l.needed, v.Get("需要调候"))
		order := elementList(v.Get("调候药效顺序"))
		if len(order) == 0 {
			m.field(l.order, l.none)
		} else {
			m.field(l.order, strings.Join(order, l.sep))
		}
		return m.String()
	}
}

// remedyGradeBody renders one grade of the remedy system in detail.
func remedyGradeBody(grade payload.Value) string {
	var m md
	if !grade.Has() {
		m.para("暂无分级数据")
		return m.String()
	}

	m.heading("命局诊断")
	for _, k := range []string{"命局类型", "命局描述", "能量本质", "关系类型"} {
		m.fieldOf(k, grade.Get(k))
	}

	m.heading("病药配置")
	config := grade.Get("病药配置")
	for _, rank := range remedyRanks[:3] {
		m.fieldOf(rank, config.Get(rank))
	}

	if effects := grade.Get("药效分析"); effects.Exists() {
		m.heading("药效分析")
		keys := effects.OrderedKeys(remedyRanks...)
		if len(keys) == 0 {
			m.add(EmptyList)
		}
		for _, k := range keys {
			m.fieldOf(k, effects.Get(k))
		}
	}

	m.heading("意识特质")
	m.paraOf(grade.Get("意识特质"))
	return m.String()
}

func firstGradeBody(v payload.Value) string {
	return remedyGradeBody(v.Get("分级").Index(0))
}

// remedyGradesTable lists every grade.
func remedyGradesTable(v payload.Value) string {
	grades := v.Get("分级").List()
	rows := make([][]string, 0, len(grades))
	for _, g := range grades {
		element := g.Get("element_cn").Text()
		if element == "" {
			element = ElementLabel(g.Get("element").Text())
		}
		rows = append(rows, []string{
			g.Get("level").TextOr(Placeholder),
			element,
			g.Get("has").TextOr(Placeholder),
			g.Get("prosperity").TextOr(Placeholder),
			g.Get("consciousness").TextOr(Placeholder),
		})
	}
	var m md
	m.table([]string{"级别", "五行", "有无", "旺相", "意识特质"}, rows)
	return m.String()
}

// =============================================================================
// FORECAST
// =============================================================================

func ganzhi(v payload.Value) string {
	s := v.Get("gan").Text() + v.Get("zhi").Text()
	if s == "" {
		return Placeholder
	}
	return s
}

// forecastBody renders the current period and every future period.
func forecastBody(v payload.Value) string {
	var m md
	current := v.Get("当前大运")
	m.heading(fmt.Sprintf("当前大运（%s岁）", current.Get("age_range").TextOr(Placeholder)))
	m.field("干支", ganzhi(current))
	m.fieldOf("影响", current.Get("influence"))

	m.heading("未来大运")
	future := v.Get("未来大运").List()
	items := make([]string, 0, len(future))
	for _, p := range future {
		items = append(items, fmt.Sprintf("**%s岁**：%s - %s",
			p.Get("age_range").TextOr(Placeholder), ganzhi(p), p.Get("influence").TextOr(Placeholder)))
	}
	m.bullets(items)
	return m.String()
}

// currentForecastBody renders only the current period.
func currentForecastBody(v payload.Value) string {
	var m md
	current := v.Get("当前大运")
	m.field("当前大运", current.Get("age_range").TextOr(Placeholder)+"岁")
	m.field("大运干支", ganzhi(current))
	m.fieldOf("影响分析", current.Get("influence"))
	return m.String()
}

// =============================================================================
// ELEMENT RELATIONS
// =============================================================================

// relationsSummaryBody renders summary, flow quality and overall strength.
func relationsSummaryBody(v payload.Value) string {
	var m md
	flow := v.Get("flow_analysis")
	m.fieldOf("总结", v.Get("summary"))
	m.fieldOf("循环状况", flow.Get("flow_quality"))
	if f, ok := flow.Get("overall_flow_strength").Float(); ok {
		m.field("整体流畅度", ratioPercent(f, 1))
	} else {
		m.field("整体流畅度", Placeholder)
	}
	return m.String()
}

// impactScale classifies a breakpoint impact ratio.
type impactScale struct {
	high, medium float64
	inclusive    bool
}

func (s impactScale) label(impact float64) string {
	above := func(x, t float64) bool {
		if s.inclusive {
			return x >= t
		}
		return x > t
	}
	switch {
	case above(impact, s.high):
		return "高"
	case above(impact, s.medium):
		return "中"
	default:
		return "低"
	}
}

var (
	detailedImpact = impactScale{high: 0.7, medium: 0.4}
	graphImpact    = impactScale{high: 0.8, medium: 0.5, inclusive: true}
)

// relationsDetailBody renders summary, flow, breakpoints and grouped relations.
func relationsDetailBody(g Geometry) func(payload.Value) string {
	return func(v payload.Value) string {
		var m md
		if s := v.Get("summary"); s.Has() {
			m.heading("关系总结")
			m.paraOf(s)
		}

		if flow := v.Get("flow_analysis"); flow.Has() {
			m.heading("能量流动分析")
			m.fieldOf("流动状况", flow.Get("flow_quality"))
			m.fieldOf("循环健康度", flow.Get("circulation_health"))
		}

		if bps := v.Get("breakpoints").List(); len(bps) > 0 {
			m.heading("断点能量分析")
			items := make([]string, 0, len(bps))
			for _, bp := range bps {
				impact := bp.Get("impact_level").FloatOr(0)
				item := fmt.Sprintf("**%s** %s · 影响：%s（%s）",
					ElementLabel(bp.Get("element_name").TextOr(Placeholder)),
					bp.Get("break_type").TextOr(""),
					ratioPercent(impact, 0),
					detailedImpact.label(impact))
				if remedies := elementList(bp.Get("remedy_names")); len(remedies) > 0 {
					item += " · 建议补强：" + strings.Join(remedies, ", ")
				}
				items = append(items, item)
			}
			m.bullets(items)
		}

		relations := v.Get("relations").List()
		if len(relations) > 0 {
			m.heading("生克关系详情")
			for _, group := range []struct{ kind, title string }{
				{"generate", "相生关系"},
				{"overcome", "相克关系"},
			} {
				var rows [][]string
				for _, r := range relations {
					if r.Get("relation_type").Text() != group.kind {
						continue
					}
					strength := clamp01(r.Get("strength").FloatOr(0))
					rows = append(rows, []string{
						r.Get("description").TextOr(Placeholder),
						ratioBar(strength, g.barWidth()),
						ratioPercent(strength, 0),
					})
				}
				if len(rows) == 0 {
					continue
				}
				m.subheading(group.title)
				m.code(alignRows(rows))
			}
		}
		return m.String()
	}
}

// =============================================================================
// QUESTION
// =============================================================================

// nonEmptyText extracts a string that is present and not blank.
func nonEmptyText(path ...string) ExtractFunc {
	return func(result payload.Value) (payload.Value, bool) {
		v := result.Path(path...)
		return v, strings.TrimSpace(v.Text()) != ""
	}
}

func questionBody(v payload.Value) string {
	var m md
	m.field("您的问题", v.Text())
	m.para("基于您的八字分析和病药体系，系统将为您提供针对性的建议和指导。")
	return m.String()
}
