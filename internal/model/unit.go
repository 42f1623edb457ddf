package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 计量单位
const (
	UnitKg      = "Kg"
	UnitGr      = "Gr"
	UnitLt      = "Lt"
	UnitMl      = "Ml"
	UnitAdet    = "Adet"
	UnitPaket   = "Paket"
	UnitKutu    = "Kutu"
	UnitDemet   = "Demet"
	UnitSise    = "Şişe"
	UnitKavanoz = "Kavanoz"
	UnitTeneke  = "Teneke"
)

// 单位类型：重量/体积允许小数，计数单位只允许整数
const (
	UnitKindMeasure = "measure"
	UnitKindCount   = "count"
)

var unitKinds = map[string]string{
	UnitKg:      UnitKindMeasure,
	UnitGr:      UnitKindMeasure,
	UnitLt:      UnitKindMeasure,
	UnitMl:      UnitKindMeasure,
	UnitAdet:    UnitKindCount,
	UnitPaket:   UnitKindCount,
	UnitKutu:    UnitKindCount,
	UnitDemet:   UnitKindCount,
	UnitSise:    UnitKindCount,
	UnitKavanoz: UnitKindCount,
	UnitTeneke:  UnitKindCount,
}

// 单位 → (基准单位, 换算系数)
var unitBase = map[string]struct {
	base   string
	factor decimal.Decimal
}{
	UnitKg: {UnitGr, decimal.NewFromInt(1000)},
	UnitGr: {UnitGr, decimal.NewFromInt(1)},
	UnitLt: {UnitMl, decimal.NewFromInt(1000)},
	UnitMl: {UnitMl, decimal.NewFromInt(1)},
}

// NormalizeUnit 将用户输入的单位（kg、KG、adet、şişe…）规范为标准写法
// 未知单位返回空字符串
func NormalizeUnit(u string) string {
	key := strings.ToLower(strings.TrimSpace(u))
	switch key {
	case "kg", "kilo", "kilogram":
		return UnitKg
	case "gr", "g", "gram":
		return UnitGr
	case "lt", "l", "litre":
		return UnitLt
	case "ml", "mililitre":
		return UnitMl
	case "adet":
		return UnitAdet
	case "paket":
		return UnitPaket
	case "kutu":
		return UnitKutu
	case "demet":
		return UnitDemet
	case "şişe", "sise":
		return UnitSise
	case "kavanoz":
		return UnitKavanoz
	case "teneke":
		return UnitTeneke
	}
	return ""
}

// UnitKind 返回单位类型，未知单位按计数单位处理
func UnitKind(unit string) string {
	if k, ok := unitKinds[unit]; ok {
		return k
	}
	return UnitKindCount
}

// IsCountUnit 计数单位（Adet、Paket…）
func IsCountUnit(unit string) bool {
	return UnitKind(unit) == UnitKindCount
}

// 数量列均为 numeric(12,3)
const QuantityScale = 3

var quantityLimit = decimal.New(1, 9)

// QuantityFits 数量能否原样存入 numeric(12,3)：至多 3 位小数且绝对值小于 10^9
func QuantityFits(qty decimal.Decimal) bool {
	return qty.Equal(qty.Truncate(QuantityScale)) && qty.Abs().LessThan(quantityLimit)
}

// ValidQuantity 校验数量格式：非负、可存储；计数单位必须为整数
func ValidQuantity(unit string, qty decimal.Decimal) bool {
	if qty.IsNegative() || !QuantityFits(qty) {
		return false
	}
	if IsCountUnit(unit) {
		return qty.Equal(qty.Truncate(0))
	}
	return true
}

// ConvertQuantity 在兼容单位之间换算数量（Gr↔Kg、Ml↔Lt，同单位 1:1）
// 不兼容时 ok=false
func ConvertQuantity(qty decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return qty, true
	}
	f, okFrom := unitBase[from]
	t, okTo := unitBase[to]
	if !okFrom || !okTo || f.base != t.base {
		return decimal.Zero, false
	}
	return qty.Mul(f.factor).Div(t.factor), true
}
