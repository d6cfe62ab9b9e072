package value

import "strings"

func isNumeric(v Value) bool { return v.kind == KindInt || v.kind == KindDouble }

// Add implements '+'. Two Strings concatenate; a String on either side
// coerces the other operand via ToString and concatenates; otherwise
// numeric promotion applies (Double if either side is Double) and
// mismatched non-numeric operands yield Null, per spec.md §4.A/§7.
func (v Value) Add(other Value) Value {
	if v.kind == KindString || other.kind == KindString {
		return String(v.ToString() + other.ToString())
	}
	if !isNumeric(v) || !isNumeric(other) {
		return Null()
	}
	if v.kind == KindDouble || other.kind == KindDouble {
		return Double(v.ToDouble() + other.ToDouble())
	}
	return Int(v.intV + other.intV)
}

// Sub implements '-'. Mismatched or non-numeric operands yield Null.
func (v Value) Sub(other Value) Value {
	if !isNumeric(v) || !isNumeric(other) {
		return Null()
	}
	if v.kind == KindDouble || other.kind == KindDouble {
		return Double(v.ToDouble() - other.ToDouble())
	}
	return Int(v.intV - other.intV)
}

// Mul implements '*'. Mismatched or non-numeric operands yield Null.
func (v Value) Mul(other Value) Value {
	if !isNumeric(v) || !isNumeric(other) {
		return Null()
	}
	if v.kind == KindDouble || other.kind == KindDouble {
		return Double(v.ToDouble() * other.ToDouble())
	}
	return Int(v.intV * other.intV)
}

// Div implements '/'. Integer division by zero yields Null; Double
// division by zero follows ordinary IEEE 754 float semantics (+Inf,
// -Inf or NaN), matching spec.md §7's "not fatal" arithmetic rule.
func (v Value) Div(other Value) Value {
	if !isNumeric(v) || !isNumeric(other) {
		return Null()
	}
	if v.kind == KindDouble || other.kind == KindDouble {
		return Double(v.ToDouble() / other.ToDouble())
	}
	if other.intV == 0 {
		return Null()
	}
	return Int(v.intV / other.intV)
}

// Compare orders two Values: numeric operands compare by promoted
// value; same-kind Bool/String/Null compare natively; everything else
// (including unlike non-numeric kinds) falls back to Kind ordinal then
// lexical ToString() order, the pinned resolution of spec.md §9's
// unlike-type comparison Open Question.
func (v Value) Compare(other Value) int {
	if isNumeric(v) && isNumeric(other) {
		if v.kind == KindDouble || other.kind == KindDouble {
			a, b := v.ToDouble(), other.ToDouble()
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
		switch {
		case v.intV < other.intV:
			return -1
		case v.intV > other.intV:
			return 1
		default:
			return 0
		}
	}
	if v.kind == other.kind {
		switch v.kind {
		case KindBool:
			switch {
			case v.boolV == other.boolV:
				return 0
			case !v.boolV:
				return -1
			default:
				return 1
			}
		case KindNull:
			return 0
		case KindString:
			return strings.Compare(v.strV, other.strV)
		default:
			return strings.Compare(v.ToString(), other.ToString())
		}
	}
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	return strings.Compare(v.ToString(), other.ToString())
}

// Eq implements '=='. Unlike non-numeric kinds are never equal, per
// spec.md §4.A.
func (v Value) Eq(other Value) bool {
	if isNumeric(v) && isNumeric(other) {
		return v.Compare(other) == 0
	}
	if v.kind != other.kind {
		return false
	}
	return v.Compare(other) == 0
}

// Neq implements '!='.
func (v Value) Neq(other Value) bool { return !v.Eq(other) }

// Lt, Lte, Gt, Gte implement the ordering operators, sharing Compare's
// unlike-type fallback.
func (v Value) Lt(other Value) bool  { return v.Compare(other) < 0 }
func (v Value) Lte(other Value) bool { return v.Compare(other) <= 0 }
func (v Value) Gt(other Value) bool  { return v.Compare(other) > 0 }
func (v Value) Gte(other Value) bool { return v.Compare(other) >= 0 }
