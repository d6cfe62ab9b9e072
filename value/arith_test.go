package value

import "testing"

func TestAddNumericPromotion(t *testing.T) {
	if got := Int(2).Add(Int(3)); got.Type() != KindInt || got.ToInt64() != 5 {
		t.Fatalf("got %+v", got)
	}
	if got := Int(2).Add(Double(3.5)); got.Type() != KindDouble || got.ToDouble() != 5.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestAddStringConcat(t *testing.T) {
	if got := String("a").Add(String("b")); got.ToString() != "ab" {
		t.Fatalf("got %q", got.ToString())
	}
	if got := String("x=").Add(Int(7)); got.ToString() != "x=7" {
		t.Fatalf("got %q", got.ToString())
	}
}

func TestAddMismatchedNonNumericYieldsNull(t *testing.T) {
	got := Bool(true).Add(NewArray())
	if !got.IsNull() {
		t.Fatalf("expected Null, got %+v", got)
	}
}

func TestDivByZero(t *testing.T) {
	if got := Int(10).Div(Int(0)); !got.IsNull() {
		t.Fatalf("expected Null for int/0, got %+v", got)
	}
	got := Double(1).Div(Double(0))
	if got.Type() != KindDouble || !(got.ToDouble() > 0) {
		t.Fatalf("expected +Inf for 1.0/0.0, got %+v", got)
	}
}

func TestCompareUnlikeKindsOrderedByKindThenString(t *testing.T) {
	a := Bool(true)
	b := String("x")
	if a.Eq(b) {
		t.Fatal("unlike kinds must never be equal")
	}
	if a.Compare(b) >= 0 {
		t.Fatalf("expected Bool < String by kind ordinal, got %d", a.Compare(b))
	}
}

func TestOrderingOperators(t *testing.T) {
	if !Int(1).Lt(Int(2)) || !Int(2).Gte(Int(2)) || !String("a").Lte(String("b")) {
		t.Fatal("ordering operators misbehaved")
	}
}
