// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

const basicFixture = `{
	"用户信息": {"姓名": "张三", "性别": "男", "出生时间": "1990年5月12日 14:00", "出生地点": "北京"},
	"bazi": {"year": "庚午", "month": "辛巳", "day": "甲子", "hour": "辛未"},
	"五行统计": {"wood": 1, "fire": 3, "earth": 2, "metal": 2, "water": 0, "最旺": "fire", "最弱": "water"},
	"定格局": {"格局类型": "正官格", "强弱": "身弱", "根": "无根", "扶抑关系": "宜扶"},
	"定寒燥": {"类型": "燥", "原因": "火旺", "需要调候": true, "调候药效顺序": ["water", "metal"]},
	"定病药": {"分级": [{
		"命局类型": "火炎土燥", "命局描述": "火势过旺", "能量本质": "外放", "关系类型": "相生",
		"病药配置": {"君药": "水", "臣药": "金", "次药": "土"},
		"药效分析": {"臣药": "辅助", "君药": "主导"},
		"意识特质": "热情"
	}]},
	"看大运": {
		"当前大运": {"age_range": "25-35", "gan": "甲", "zhi": "申", "influence": "事业上升"},
		"未来大运": [
			{"age_range": "35-45", "gan": "乙", "zhi": "酉", "influence": "稳定"},
			{"age_range": "45-55", "gan": "丙", "zhi": "戌", "influence": "转变"}
		]
	},
	"五行生克关系": {"summary": "火生土", "flow_analysis": {"flow_quality": "顺畅", "overall_flow_strength": 0.756}},
	"问题": "我的事业发展如何？"
}`

const enhancedFixture = `{
	"structured_analysis": {
		"bazi": {"year": "庚午", "month": "辛巳", "day": "甲子", "hour": "辛未"},
		"五行统计": {"wood": 1.5, "fire": 3, "earth": 2, "metal": 2.5, "water": 1, "最旺": "fire", "最弱": "water"},
		"定格局": {"格局类型": "正官格", "强弱": "身弱", "根": "无根", "扶抑关系": "宜扶"},
		"定寒燥": {"类型": "中和", "原因": "平衡", "需要调候": false, "调候药效顺序": []},
		"定病药": {"分级": [
			{"level": "君药", "element_cn": "水", "has": "有", "prosperity": "旺", "consciousness": "智慧"},
			{"level": "臣药", "element": "metal", "has": "无", "prosperity": "弱", "consciousness": "决断"}
		]},
		"看大运": {"当前大运": {"age_range": "25-35", "gan": "甲", "zhi": "申", "influence": "上升"}},
		"五行生克关系": {
			"summary": "整体顺畅",
			"flow_analysis": {"flow_quality": "良好", "circulation_health": "健康"},
			"breakpoints": [{"element_name": "water", "break_type": "缺失", "impact_level": 0.75, "remedy_names": ["金", "water"]}],
			"relations": [
				{"relation_type": "overcome", "description": "水克火", "strength": 0.3},
				{"relation_type": "generate", "description": "木生火", "strength": 0.8},
				{"relation_type": "generate", "description": "火生土", "strength": 0.55}
			]
		},
		"专家模式数据": {"规则依据": "子平真诠", "判定优先级": ["格局", "调候"], "审计信息": {"rules": 12, "engine": "d1d2"}}
	},
	"natural_language_interpretation": {
		"energy_portrait": "你像一团**火**。\n热情而明亮。",
		"question_answer": "",
		"practice_suggestions": "多亲近水。",
		"disclaimer": "仅供参考。"
	},
	"metadata": {"analysis_time": "2025-03-01T12:00:00", "engine_version": "2.1", "mode": "expert", "llm_option": "claude_api"}
}`

const legacyFixture = `{
	"用户信息": {"姓名": "李四", "性别": "女", "出生时间": "1985年1月1日 08:30", "出生地点": "上海"},
	"bazi": {"year": "甲子", "month": "丙寅", "day": "戊辰", "hour": "丙辰"},
	"大运信息": {
		"当前大运": {"gan": "己", "zhi": "巳", "人生阶段": "壮年", "关键机遇": "合作"},
		"未来大运": [
			{"age_range": "40-50", "gan": "庚", "zhi": "午", "influence": "稳", "趋势展望": "上行"},
			{"age_range": "50-60", "gan": "辛", "zhi": "未", "influence": "缓"},
			{"age_range": "60-70", "gan": "壬", "zhi": "申", "influence": "静"},
			{"age_range": "70-80", "gan": "癸", "zhi": "酉", "influence": "隐"}
		],
		"能量趋势图": {
			"data_points": [{"age": 20, "energy": 40}, {"age": 30, "energy": 80}, {"age": 40, "energy": 60}],
			"interactive_nodes": [{"age": 30, "energy": 80.4, "title": "巅峰", "advice": "把握"}]
		}
	},
	"命局判定": {
		"主要类型": ["从强格"],
		"候选类型": [{"type": "甲"}, {"type": "乙"}, {"type": "丙"}, {"type": "丁"}],
		"plain_descriptions": {"从强格": {"鲜明标志": "🔥", "核心特点": "自信", "性格表现": "果断", "典型行为": "领导"}}
	},
	"能量画像": {"核心意象": "山中之火", "内心声音": "我要发光"},
	"问题分析": {"原始问题": "感情", "深层动机": "安全感"},
	"五行生克关系": {
		"flow_analysis": {},
		"relationship_graph": {
			"nodes": [{"id": "wood", "name": "木", "energy": 2}, {"id": "fire", "name": "火", "energy": 3}],
			"edges": [{"from": "wood", "to": "fire", "type": "generate", "description": "木生火"}, {"from": "fire", "to": "metal", "type": "overcome"}]
		},
		"breakpoints": [{"element_name": "金", "break_type": "断裂", "impact_level": 0.8, "remedy_names": ["earth", "水"]}]
	},
	"启发引导": {"重新框定的视角": "换位", "深层反思问题": ["为何？"], "智慧洞察": ["知足"]},
	"个性化方案": {"行动建议": ["早起", "冥想"], "用药指导": {"臣药": "金", "君药": "水"}},
	"增强病药": {
		"双重病根分析": [{"病根类型": "火旺", "具体表现": "急躁", "需要的药": "水", "生活体现": "易怒"}],
		"综合用药策略": {"臣药": {"药名": "金", "意识指导": "收敛", "实践建议": "整理"}, "君药": {"药名": "水", "意识指导": "沉静", "实践建议": "冥想"}}
	},
	"定病药": {"分级": [{"命局类型": "不应出现"}]},
	"五行统计": {"木": 2, "火": 3, "土": 3, "金": 0, "水": 1, "最旺": "火", "最弱": "金"},
	"大白话说明": {"格局说明": "外向", "大运说明": "晚成"}
}`
