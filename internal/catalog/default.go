package catalog

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/acinsight/querygate/internal/model"
)

// defaultIndicators is the built-in semantic dictionary. The synonym and
// field lists are deliberately wide: the classifier and scanner match by
// containment, so every paraphrase a user is likely to type needs a home.
var defaultIndicators = []Indicator{
	{
		Key:      "order_count",
		Name:     "订单数",
		Synonyms: []string{"订单量", "单数", "成交单数", "order count"},
		Fields:   []string{"order_id"},
		Level:    model.LevelPublic,
		Formula:  "COUNT(order_id)",
	},
	{
		Key:      "sales_amount",
		Name:     "销售额",
		Synonyms: []string{"销售金额", "营业额", "营收", "sales amount"},
		Fields:   []string{"销售价", "数量", "amount"},
		Level:    model.LevelPublic,
		Formula:  "SUM(quantity * unit_price)",
	},
	{
		Key:           "gross_margin",
		Name:          "毛利",
		Synonyms:      []string{"毛利润", "利润", "盈利", "gross margin", "profit"},
		Fields:        []string{"销售价", "进货价", "单价", "成本", "unit_price", "cost_price"},
		Level:         model.LevelRestricted,
		Formula:       "SUM(销售价 - 进货价)",
		DenialMessage: "毛利涉及敏感经营数据，需 Admin 权限",
	},
	// Restricted field names must not collide with an L0 indicator's
	// display name (毛利额 not 毛利, 销售总额 not 销售额): the scanner
	// matches fields by containment, and a collision would degrade a
	// purely public query to a partial decision.
	{
		Key:           "margin_rate",
		Name:          "毛利率",
		Synonyms:      []string{"利润率", "毛利占比", "margin rate"},
		Fields:        []string{"毛利额", "销售总额"},
		Level:         model.LevelRestricted,
		Formula:       "毛利额 / 销售总额",
		DenialMessage: "毛利率涉及敏感经营数据，需 Admin 权限",
	},
	{
		Key:           "receivable",
		Name:          "欠款",
		Synonyms:      []string{"应收款", "欠款情况", "回款缺口", "receivable"},
		Fields:        []string{"应收金额", "已收金额"},
		Level:         model.LevelRestricted,
		Formula:       "SUM(应收金额 - 已收金额)",
		DenialMessage: "欠款涉及敏感财务数据，需 Admin 权限",
	},
}

// Default returns the built-in semantic dictionary. Used by the CLI when no
// catalog file is given; the serving layer always loads from file.
func Default() *Dictionary {
	d := &Dictionary{
		Version:    "builtin",
		Indicators: defaultIndicators,
		Dimensions: []Dimension{
			{Name: "区域", Values: []string{"华东", "华南", "华北", "西南", "东北"}},
			{Name: "时间", Values: []string{"今天", "本周", "本月", "本季度", "本年度"}},
		},
		Rules: Rules{
			Calculation: "金额以分存储，展示时除以 100 转换为元；金额聚合必须用 COALESCE 处理 NULL 值",
			Security:    "非 Admin 角色自动注入 owner_id 行级过滤；所有查询必须包含时间维度约束",
		},
	}
	d.index()
	return d
}

// DefaultHash returns the version hash of the built-in dictionary, computed
// over its YAML rendering so it matches what LoadWithHash would report for
// an init-catalog file.
func DefaultHash() string {
	h := sha256.Sum256([]byte(DefaultYAML()))
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultYAML returns a commented catalog file for init-catalog.
func DefaultYAML() string {
	return `# querygate semantic dictionary
# Generated by: querygate init-catalog
#
# Every indicator the SQL generator may reference must be defined here.
# The engine fails closed: it refuses to start without a valid catalog.
#
# Fields:
#   key: unique indicator key
#   name: display name matched against query intents
#   synonyms: additional names matched case-insensitively by containment
#   fields: underlying columns/terms the indicator depends on
#   level: L0 (public) or L1 (restricted, Admin only)
#   formula: canonical formula, handed to the SQL generator verbatim
#   denial_message: user-facing message when a non-Admin requests an L1 indicator
version: "1.0"

indicators:
  - key: order_count
    name: 订单数
    synonyms: [订单量, 单数, 成交单数, order count]
    fields: [order_id]
    level: L0
    formula: COUNT(order_id)

  - key: sales_amount
    name: 销售额
    synonyms: [销售金额, 营业额, 营收, sales amount]
    fields: [销售价, 数量, amount]
    level: L0
    formula: SUM(quantity * unit_price)

  - key: gross_margin
    name: 毛利
    synonyms: [毛利润, 利润, 盈利, gross margin, profit]
    fields: [销售价, 进货价, 单价, 成本, unit_price, cost_price]
    level: L1
    formula: SUM(销售价 - 进货价)
    denial_message: 毛利涉及敏感经营数据，需 Admin 权限

  - key: margin_rate
    name: 毛利率
    synonyms: [利润率, 毛利占比, margin rate]
    fields: [毛利额, 销售总额]
    level: L1
    formula: 毛利额 / 销售总额
    denial_message: 毛利率涉及敏感经营数据，需 Admin 权限

  - key: receivable
    name: 欠款
    synonyms: [应收款, 欠款情况, 回款缺口, receivable]
    fields: [应收金额, 已收金额]
    level: L1
    formula: SUM(应收金额 - 已收金额)
    denial_message: 欠款涉及敏感财务数据，需 Admin 权限

dimensions:
  - name: 区域
    values: [华东, 华南, 华北, 西南, 东北]
  - name: 时间
    values: [今天, 本周, 本月, 本季度, 本年度]

rules:
  calculation: 金额以分存储，展示时除以 100 转换为元；金额聚合必须用 COALESCE 处理 NULL 值
  security: 非 Admin 角色自动注入 owner_id 行级过滤；所有查询必须包含时间维度约束
`
}
