package models

import (
	"testing"
)

func TestNewViolation_FallsBackToHome(t *testing.T) {
	v := NewViolation(RuleUnused, "A.java", Position{}, "msg")
	if v.Position() != HomePosition {
		t.Errorf("Position() = %+v, want %+v", v.Position(), HomePosition)
	}

	v = NewViolation(RuleUnused, "A.java", Position{Line: 4, Column: 7}, "msg")
	if v.Line != 4 || v.Column != 7 {
		t.Errorf("got %d:%d, want 4:7", v.Line, v.Column)
	}
}

func TestViolation_String(t *testing.T) {
	v := NewViolation(RulePattern, "com/acme/Main.java", Position{Line: 3, Column: 9}, "bad")
	want := "com/acme/Main.java:3:9: bad"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestViolation_Fingerprint(t *testing.T) {
	a := NewViolation(RuleUnused, "A.java", Position{Line: 2, Column: 5}, "msg")
	a.Member = "x"
	b := a
	b.Declaration = "private int x;"

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("declaration text should not affect the fingerprint")
	}
	if len(a.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a.Fingerprint()))
	}

	c := a
	c.Line = 3
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different positions should not share a fingerprint")
	}
}

func TestRuleResult(t *testing.T) {
	pass := Pass(RuleImport, "A.java")
	if pass.Failed() {
		t.Error("Pass result should not be failed")
	}

	fail := Fail(NewViolation(RuleImport, "A.java", HomePosition, "msg"))
	if !fail.Failed() {
		t.Error("Fail result should be failed")
	}
	if fail.Rule != RuleImport || fail.File != "A.java" {
		t.Errorf("Fail result = %+v", fail)
	}
}

func TestViolations_DedupAndSort(t *testing.T) {
	v1 := NewViolation(RuleUnused, "B.java", Position{Line: 1, Column: 1}, "one")
	v2 := NewViolation(RulePattern, "A.java", Position{Line: 9, Column: 1}, "two")
	v3 := NewViolation(RuleImport, "A.java", Position{Line: 2, Column: 1}, "three")

	results := []RuleResult{
		Fail(v1), Pass(RuleImport, "B.java"), Fail(v2), Fail(v3), Fail(v1),
	}

	got := Violations(results)
	want := []Violation{v3, v2, v1}
	if len(got) != len(want) {
		t.Fatalf("got %d violations, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("violation %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestViolations_NoFailures(t *testing.T) {
	if got := Violations([]RuleResult{Pass(RulePattern, "A.java")}); len(got) != 0 {
		t.Errorf("expected no violations, got %v", got)
	}
}

func TestGroupByFile(t *testing.T) {
	vs := []Violation{
		{File: "A.java", Line: 1},
		{File: "A.java", Line: 2},
		{File: "B.java", Line: 1},
	}

	groups := GroupByFile(vs)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].File != "A.java" || len(groups[0].Violations) != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].File != "B.java" || len(groups[1].Violations) != 1 {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestCheckSummary_Add(t *testing.T) {
	s := NewCheckSummary()
	s.Add(Violation{Rule: RuleUnused, File: "A.java"})
	s.Add(Violation{Rule: RuleUnused, File: "B.java"})
	s.Add(Violation{Rule: RulePattern, File: "A.java"})

	if s.Violations != 3 {
		t.Errorf("Violations = %d, want 3", s.Violations)
	}
	if s.ByRule[RuleUnused] != 2 {
		t.Errorf("ByRule[unused] = %d, want 2", s.ByRule[RuleUnused])
	}
	if s.ByFile["A.java"] != 2 {
		t.Errorf("ByFile[A.java] = %d, want 2", s.ByFile["A.java"])
	}
}
