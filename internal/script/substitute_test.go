package script

import "testing"

func TestSubstituteEnv_PrefixCollision(t *testing.T) {
	env := map[string]string{
		"MELOS_ROOT":      "short",
		"MELOS_ROOT_PATH": "/workspace",
	}
	got := substituteEnv("$MELOS_ROOT_PATH/bin", env)
	if got != "/workspace/bin" {
		t.Fatalf("expected longest-prefix match, got %q", got)
	}
}

func TestSubstituteEnv_BracedForm(t *testing.T) {
	env := map[string]string{"NAME": "pkg-a"}
	got := substituteEnv("hello ${NAME}!", env)
	if got != "hello pkg-a!" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteEnv_NoMatchOnWordBoundary(t *testing.T) {
	env := map[string]string{"FOO": "bar"}
	got := substituteEnv("$FOOBAR", env)
	if got != "$FOOBAR" {
		t.Fatalf("expected no substitution, got %q", got)
	}
}

func TestNormalizeContinuations(t *testing.T) {
	in := "echo a \\\n  echo b"
	got := normalizeContinuations(in)
	want := "echo a  echo b"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReplaceToolToken_SkipsMelosRs(t *testing.T) {
	got := replaceToolToken("melos-rs run build", "monorel")
	if got != "melos-rs run build" {
		t.Fatalf("expected melos-rs untouched, got %q", got)
	}
}

func TestReplaceToolToken_ReplacesStandaloneToken(t *testing.T) {
	got := replaceToolToken("melos run build", "monorel")
	if got != "monorel run build" {
		t.Fatalf("got %q", got)
	}
}

func TestScriptRunTarget(t *testing.T) {
	name, ok := scriptRunTarget("monorel run build", "monorel")
	if !ok || name != "build" {
		t.Fatalf("expected match on build, got %q ok=%v", name, ok)
	}
	if _, ok := scriptRunTarget("monorel exec -- echo hi", "monorel"); ok {
		t.Fatalf("expected no match for exec invocation")
	}
}

func TestParseExecFlags_Separator(t *testing.T) {
	inv := parseExecFlags("-c 4 --fail-fast -- dart analyze .")
	if inv.Concurrency != 4 || !inv.FailFast {
		t.Fatalf("got %+v", inv)
	}
	if inv.Command != "dart analyze ." {
		t.Fatalf("got command %q", inv.Command)
	}
}

func TestParseExecFlags_FileExistsQuoted(t *testing.T) {
	inv := parseExecFlags(`--file-exists="build.yaml" -- dart run build_runner build`)
	if inv.FileExists != "build.yaml" {
		t.Fatalf("got %q", inv.FileExists)
	}
}

func TestParseExecFlags_NoSeparatorStripsFlags(t *testing.T) {
	inv := parseExecFlags("--order-dependents flutter test")
	if !inv.OrderDependents {
		t.Fatalf("expected order-dependents flag parsed")
	}
	if inv.Command != "flutter test" {
		t.Fatalf("got command %q", inv.Command)
	}
}

func TestIsExecInvocation(t *testing.T) {
	if !isExecInvocation("melos exec -- echo hi", "monorel") {
		t.Fatalf("expected melos exec to be detected")
	}
	if isExecInvocation("melos-exec-other", "monorel") {
		t.Fatalf("expected no false positive on glued token")
	}
}
