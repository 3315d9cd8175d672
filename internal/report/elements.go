// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import "strings"

// =============================================================================
// FIVE ELEMENTS
// =============================================================================

// Element codes as sent by the service.
const (
	Wood  = "wood"
	Fire  = "fire"
	Earth = "earth"
	Metal = "metal"
	Water = "water"
)

// ElementOrder is the canonical display order.
var ElementOrder = []string{Wood, Fire, Earth, Metal, Water}

var elementLabels = map[string]string{
	Wood:  "木",
	Fire:  "火",
	Earth: "土",
	Metal: "金",
	Water: "水",
}

var labelCodes = map[string]string{
	"木": Wood,
	"火": Fire,
	"土": Earth,
	"金": Metal,
	"水": Water,
}

// ElementLabel maps an element code to its display label. Labels pass
// through; unknown codes are returned unchanged.
func ElementLabel(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if l, ok := elementLabels[c]; ok {
		return l
	}
	return code
}

// ElementCode maps a code or label to the canonical code. ok is false for
// anything that is not one of the five elements.
func ElementCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, ok := elementLabels[strings.ToLower(s)]; ok {
		return strings.ToLower(s), true
	}
	if c, ok := labelCodes[s]; ok {
		return c, true
	}
	return "", false
}

// SameElement reports whether a and b name the same element, in either form.
func SameElement(a, b string) bool {
	ca, okA := ElementCode(a)
	cb, okB := ElementCode(b)
	if okA && okB {
		return ca == cb
	}
	return strings.TrimSpace(a) != "" && strings.TrimSpace(a) == strings.TrimSpace(b)
}

// =============================================================================
// STEMS AND BRANCHES
// =============================================================================

var stemBranchElement = map[rune]string{
	'甲': Wood, '乙': Wood, '寅': Wood, '卯': Wood,
	'丙': Fire, '丁': Fire, '巳': Fire, '午': Fire,
	'戊': Earth, '己': Earth, '辰': Earth, '戌': Earth, '丑': Earth, '未': Earth,
	'庚': Metal, '辛': Metal, '申': Metal, '酉': Metal,
	'壬': Water, '癸': Water, '亥': Water, '子': Water,
}

// ElementOf returns the element code of a heavenly stem or earthly branch.
func ElementOf(ch rune) (string, bool) {
	e, ok := stemBranchElement[ch]
	return e, ok
}

// QiKind ranks a hidden stem within its branch.
type QiKind int

const (
	QiMain QiKind = iota
	QiMiddle
	QiResidual
)

// Label is the one-character rank marker.
func (k QiKind) Label() string {
	switch k {
	case QiMain:
		return "主"
	case QiMiddle:
		return "中"
	default:
		return "余"
	}
}

// HiddenStem is a stem stored inside an earthly branch.
type HiddenStem struct {
	Stem rune
	Kind QiKind
}

var hiddenStems = map[rune][]rune{
	'子': {'癸'},
	'丑': {'己', '癸', '辛'},
	'寅': {'甲', '丙', '戊'},
	'卯': {'乙'},
	'辰': {'戊', '乙', '癸'},
	'巳': {'丙', '庚', '戊'},
	'午': {'丁', '己'},
	'未': {'己', '丁', '乙'},
	'申': {'庚', '壬', '戊'},
	'酉': {'辛'},
	'戌': {'戊', '辛', '丁'},
	'亥': {'壬', '甲'},
}

// HiddenStems returns the hidden stems of branch, main qi first.
func HiddenStems(branch rune) []HiddenStem {
	stems := hiddenStems[branch]
	out := make([]HiddenStem, len(stems))
	for i, s := range stems {
		out[i] = HiddenStem{Stem: s, Kind: QiKind(i)}
	}
	return out
}

// splitPillar separates a two-character pillar into stem and branch.
func splitPillar(p string) (stem, branch rune, ok bool) {
	r := []rune(strings.TrimSpace(p))
	if len(r) < 2 {
		return 0, 0, false
	}
	return r[0], r[1], true
}
