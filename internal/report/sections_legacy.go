// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/jeranaias/bazi-report-tui/internal/payload"
)

// Section ids only the legacy table uses.
const (
	IDDayun            = "dayun"
	IDJuju             = "juju"
	IDPortrait         = "portrait"
	IDQuestionAnalysis = "question_analysis"
	IDInspiration      = "inspiration"
	IDSolution         = "solution"
	IDPlainSummary     = "plain_summary"
)

// =============================================================================
// LUCK PERIODS
// =============================================================================

// dayunBody renders the energy timeline, the current period in detail and
// the next three periods.
func dayunBody(v payload.Value) string {
	var m md

	if timeline := v.Get("能量趋势图"); timeline.Has() {
		writeTimeline(&m, timeline)
	}

	current := v.Get("当前大运")
	m.heading("当前大运 " + strings.TrimSpace(current.Get("gan").Text()+current.Get("zhi").Text()))
	m.field("年龄段", current.Get("age_range").TextOr("未知"))
	m.field("影响分析", current.Get("influence").TextOr("暂无分析"))
	for _, k := range []string{"人生阶段", "平衡分析", "平衡趋势", "关键机遇", "主要挑战", "阶段建议"} {
		m.optional(k, current.Get(k))
	}

	future := v.Get("未来大运").List()
	if len(future) > 0 {
		m.heading("未来大运展望")
		if len(future) > 3 {
			future = future[:3]
		}
		items := make([]string, 0, len(future))
		for _, p := range future {
			item := fmt.Sprintf("**%s %s**：%s",
				p.Get("age_range").TextOr(Placeholder), ganzhi(p), p.Get("influence").TextOr(Placeholder))
			if trend := strings.TrimSpace(p.Get("趋势展望").Text()); trend != "" {
				item += "；趋势：" + trend
			}
			items = append(items, item)
		}
		m.bullets(items)
	}
	return m.String()
}

// writeTimeline draws the energy series as a sparkline with its age range.
func writeTimeline(m *md, timeline payload.Value) {
	points := timeline.Get("data_points").List()
	if len(points) == 0 {
		return
	}
	energies := make([]float64, 0, len(points))
	minAge, maxAge := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		energies = append(energies, p.Get("energy").FloatOr(0))
		age := p.Get("age").FloatOr(0)
		minAge = math.Min(minAge, age)
		maxAge = math.Max(maxAge, age)
	}
	lo, hi := energies[0], energies[0]
	for _, e := range energies {
		lo, hi = math.Min(lo, e), math.Max(hi, e)
	}

	m.heading("生命能量趋势图")
	m.code([]string{
		sparkline(energies),
		fmt.Sprintf("年龄 %s–%s 岁 · 能量指数 %s–%s",
			formatNumber(minAge), formatNumber(maxAge), formatNumber(math.Round(lo)), formatNumber(math.Round(hi))),
	})

	nodes := timeline.Get("interactive_nodes").List()
	items := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts := []string{fmt.Sprintf("**%s岁 %s** 能量指数 %s",
			formatNumber(n.Get("age").FloatOr(0)),
			n.Get("title").TextOr(""),
			formatNumber(math.Round(n.Get("energy").FloatOr(0))))}
		for _, f := range []labeled{
			{"opportunities", "机遇"},
			{"challenges", "挑战"},
			{"balance_trend", "趋势"},
			{"advice", "建议"},
			{"key_focus", "重点"},
		} {
			if s := strings.TrimSpace(n.Get(f.key).Text()); s != "" {
				parts = append(parts, f.label+"："+s)
			}
		}
		items = append(items, strings.Join(parts, "；"))
	}
	if len(items) > 0 {
		m.bullets(items)
	}
}

// =============================================================================
// PATTERN TYPE, PORTRAIT, QUESTION ANALYSIS
// =============================================================================

func jujuBody(v payload.Value) string {
	var m md
	m.heading("主要类型分析")
	types := v.Get("主要类型").Strings()
	descriptions := v.Get("plain_descriptions")
	if len(types) == 0 {
		m.para("暂无明确主类型")
	}
	for _, t := range types {
		desc := descriptions.Get(t)
		title := t
		if mark := strings.TrimSpace(desc.Get("鲜明标志").Text()); mark != "" {
			title += " " + mark
		}
		m.subheading(title)
		if desc.Has() {
			m.fieldOf("核心特点", desc.Get("核心特点"))
			m.fieldOf("性格表现", desc.Get("性格表现"))
			m.fieldOf("典型行为", desc.Get("典型行为"))
		}
	}

	if candidates := v.Get("候选类型").List(); len(candidates) > 0 {
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			name := c.Get("type").Text()
			if name == "" {
				name = c.Text()
			}
			if name != "" {
				names = append(names, name)
			}
		}
		m.heading("其他可能的特征")
		m.para(strings.Join(names, "、"))
	}

	m.para("**说明：**命局类型反映了您天生的能量模式和性格倾向，了解这些特点可以帮助您更好地发挥优势、规避短板。")
	return m.String()
}

func portraitBody(v payload.Value) string {
	var m md
	m.heading("核心意象")
	m.paraOf(v.Get("核心意象"))
	m.heading("详细描述")
	m.paraOf(v.Get("详细描述"))
	m.heading("生活中的体现")
	m.paraOf(v.Get("生活体现"))
	m.heading("内心的声音")
	m.quote(v.Get("内心声音").Text())
	m.heading("能量节奏")
	m.paraOf(v.Get("能量节奏"))
	return m.String()
}

func questionAnalysisBody(v payload.Value) string {
	var m md
	m.field("您的问题", v.Get("原始问题").Text())
	m.heading("问题背后的深层动机")
	m.paraOf(v.Get("深层动机"))
	m.heading("为什么这个问题对您很重要")
	m.paraOf(v.Get("重要性分析"))
	m.heading("核心议题")
	m.paraOf(v.Get("核心议题"))
	return m.String()
}

// =============================================================================
// GUIDANCE
// =============================================================================

func inspirationBody(v payload.Value) string {
	var m md
	m.heading("换个角度看问题")
	m.paraOf(v.Get("重新框定的视角"))

	if qs := v.Get("深层反思问题").Strings(); len(qs) > 0 {
		m.heading("值得深思的问题")
		m.bullets(qs)
	}
	if angles := v.Get("多角度思考").Strings(); len(angles) > 0 {
		m.heading("多维度思考")
		m.bullets(angles)
	}
	if insights := v.Get("智慧洞察").Strings(); len(insights) > 0 {
		m.heading("智慧洞察")
		for _, s := range insights {
			m.quote(s)
		}
	}

	m.heading("意识层次的提升")
	m.paraOf(v.Get("意识提升"))
	return m.String()
}

func solutionBody(v payload.Value) string {
	var m md
	if s := v.Get("优势模式").Strings(); len(s) > 0 {
		m.heading("您的优势模式")
		m.bullets(s)
	}
	if s := v.Get("温馨提醒").Strings(); len(s) > 0 {
		m.heading("温馨提醒")
		m.bullets(s)
	}
	if s := v.Get("行动建议").Strings(); len(s) > 0 {
		m.heading("具体行动建议")
		m.numbered(s)
	}
	if guidance := v.Get("用药指导"); guidance.Len() > 0 {
		m.heading("意识能量调节")
		for _, k := range guidance.OrderedKeys(remedyRanks...) {
			m.fieldOf(k, guidance.Get(k))
		}
	}

	m.heading("时机把握")
	m.para(v.Get("时机建议").TextOr("把握当下，顺应自然节奏"))
	m.heading("能量管理")
	m.para(v.Get("能量管理").TextOr("保持身心平衡，适度调节"))
	return m.String()
}

// =============================================================================
// REMEDY (ENHANCED OR GRADED)
// =============================================================================

const keyEnhancedRemedy = "增强病药"

// remedyEither prefers the enhanced remedy analysis and falls back to the
// first grade of the standard one.
func remedyEither(result payload.Value) (payload.Value, bool) {
	if result.Get(keyEnhancedRemedy).Has() {
		return result, true
	}
	return result, result.Path(keyRemedy, "分级").Index(0).Has()
}

func remedyEitherBlock(result payload.Value) Block {
	if enhanced := result.Get(keyEnhancedRemedy); enhanced.Has() {
		return Block{ID: IDRemedy, Title: "深度病药分析", Body: enhancedRemedyBody(enhanced)}
	}
	return Block{ID: IDRemedy, Title: "病药体系分析", Body: firstGradeBody(result.Get(keyRemedy))}
}

func enhancedRemedyBody(v payload.Value) string {
	var m md
	if roots := v.Get("双重病根分析").List(); len(roots) > 0 {
		m.heading("病根分析")
		for _, r := range roots {
			m.subheading(r.Get("病根类型").TextOr(Placeholder))
			m.fieldOf("具体表现", r.Get("具体表现"))
			m.fieldOf("需要的药", r.Get("需要的药"))
			m.fieldOf("生活体现", r.Get("生活体现"))
		}
	}
	strategy := v.Get("综合用药策略")
	if strategy.Len() > 0 {
		m.heading("用药策略")
		for _, level := range strategy.OrderedKeys(remedyRanks...) {
			info := strategy.Get(level)
			m.subheading(level + "：" + info.Get("药名").TextOr(Placeholder))
			m.fieldOf("意识指导", info.Get("意识指导"))
			m.fieldOf("实践建议", info.Get("实践建议"))
		}
	}
	return m.String()
}

// =============================================================================
// ELEMENT GRAPH
// =============================================================================

// relationsGraphBody renders the relationship graph as node and edge lists.
func relationsGraphBody(v payload.Value) string {
	var m md
	flow := v.Get("flow_analysis")
	m.field("能量流动质量", flow.Get("flow_quality").TextOr("正常"))
	m.field("流动强度", ratioPercent(flow.Get("overall_flow_strength").FloatOr(1), 0))

	graph := v.Get("relationship_graph")
	nodes := graph.Get("nodes").List()
	names := make(map[string]string, len(nodes))
	if len(nodes) > 0 {
		rows := make([][]string, 0, len(nodes))
		for _, n := range nodes {
			id := n.Get("id").Text()
			name := ElementLabel(id)
			if _, known := ElementCode(id); !known {
				name = n.Get("name").TextOr(id)
			}
			names[id] = name
			rows = append(rows, []string{name, n.Get("energy").TextOr(Placeholder)})
		}
		m.heading("五行节点")
		m.table([]string{"五行", "能量"}, rows)
	}

	if edges := graph.Get("edges").List(); len(edges) > 0 {
		items := make([]string, 0, len(edges))
		for _, e := range edges {
			kind := "相克"
			if e.Get("type").Text() == "generate" {
				kind = "相生"
			}
			item := fmt.Sprintf("%s → %s（%s）", nodeName(names, e.Get("from").Text()), nodeName(names, e.Get("to").Text()), kind)
			if d := strings.TrimSpace(e.Get("description").Text()); d != "" {
				item += "：" + d
			}
			items = append(items, item)
		}
		m.heading("关系连线")
		m.bullets(items)
	}

	if bps := v.Get("breakpoints").List(); len(bps) > 0 {
		items := make([]string, 0, len(bps))
		for _, bp := range bps {
			items = append(items, fmt.Sprintf("**%s** %s · 化解方案：加强 %s 能量 · 影响程度：%s",
				ElementLabel(bp.Get("element_name").TextOr(Placeholder)),
				bp.Get("break_type").TextOr(""),
				strings.Join(elementList(bp.Get("remedy_names")), "、"),
				graphImpact.label(bp.Get("impact_level").FloatOr(0))))
		}
		m.heading("能量断点分析")
		m.bullets(items)
	}
	return m.String()
}

func nodeName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return ElementLabel(id)
}

// =============================================================================
// PLAIN-LANGUAGE SUMMARY
// =============================================================================

func plainSummaryBody(v payload.Value) string {
	var m md
	for _, f := range []labeled{
		{"格局说明", "性格特点"},
		{"五行说明", "五行特质"},
		{"调候说明", "性格倾向"},
		{"大运说明", "时机分析"},
	} {
		m.optional(f.label, v.Get(f.key))
	}
	return m.String()
}
