package version

import "testing"

func TestBump_Major(t *testing.T) {
	got, err := Bump("1.2.3", BumpMajor, "")
	if err != nil || got != "2.0.0" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestBump_BuildSuffixPreserved(t *testing.T) {
	got, err := Bump("1.2.3+5", BumpPatch, "")
	if err != nil || got != "1.2.4+5" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestBump_BuildKindIncrementsSuffix(t *testing.T) {
	got, err := Bump("1.2.3+5", BumpBuild, "")
	if err != nil || got != "1.2.3+6" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestBump_BuildKindNoExistingSuffix(t *testing.T) {
	got, err := Bump("1.2.3", BumpBuild, "")
	if err != nil || got != "1.2.3+1" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestBump_None(t *testing.T) {
	got, err := Bump("1.2.3", BumpNone, "")
	if err != nil || got != "1.2.3" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestPrereleaseBump_SamePreidIncrementsCounter(t *testing.T) {
	got, err := PrereleaseBump("1.2.3-beta.2", BumpMinor, "", "beta")
	if err != nil || got != "1.2.3-beta.3" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestPrereleaseBump_DifferentPreidResets(t *testing.T) {
	got, err := PrereleaseBump("1.2.3-alpha.4", BumpMinor, "", "beta")
	if err != nil || got != "1.2.3-beta.0" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestPrereleaseBump_StableTransitionsIn(t *testing.T) {
	got, err := PrereleaseBump("1.2.3", BumpMinor, "", "beta")
	if err != nil || got != "1.3.0-beta.0" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestGraduate(t *testing.T) {
	got, err := Graduate("1.2.3-beta.1")
	if err != nil || got != "1.2.3" {
		t.Fatalf("got %q err %v", got, err)
	}
	got, err = Graduate("1.2.3")
	if err != nil || got != "1.2.3" {
		t.Fatalf("no-op case got %q err %v", got, err)
	}
}

func TestHighestBase(t *testing.T) {
	got, err := HighestBase([]string{"1.2.3", "2.0.0-beta.1", "1.9.9"})
	if err != nil || got != "2.0.0" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestShouldRewriteConstraint(t *testing.T) {
	cases := map[string]bool{
		"^1.2.3":  true,
		"1.2.3":   true,
		">=1.0.0": true,
		"path:../foo": false,
		"git:url":     false,
		"sdk: flutter": false,
	}
	for in, want := range cases {
		if got := ShouldRewriteConstraint(in); got != want {
			t.Errorf("ShouldRewriteConstraint(%q) = %v, want %v", in, got, want)
		}
	}
}
