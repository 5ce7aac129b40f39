package playthrough

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.lua")
	if err := os.WriteFile(path, []byte(source), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFromFileBuildsSteps(t *testing.T) {
	path := writeFixture(t, `local run = Playthrough.new("full chain")
run:start({story = "cyber-corp", chain = {"sns-recon", "phishing-email"}})
run:scenario()
run:action({type = "scan", target = "file-server"})
run:phase({component = "sns-recon", outcome = {recon = {clues_found = 4, clues_total = 5}}})
run:expect({stealth_at_least = 90})
run:report({min_score = 50})
return run
`)

	run, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load playthrough: %v", err)
	}
	if run.Name != "full chain" {
		t.Errorf("name = %q, want %q", run.Name, "full chain")
	}
	kinds := make([]string, 0, len(run.Steps))
	for _, step := range run.Steps {
		kinds = append(kinds, step.Kind)
	}
	want := []string{"start", "scenario", "action", "phase", "expect", "report"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("step kinds = %v, want %v", kinds, want)
	}

	start := run.Steps[0]
	if start.Args["story"] != "cyber-corp" {
		t.Errorf("start story = %v, want cyber-corp", start.Args["story"])
	}
	chain, ok := start.Args["chain"].([]any)
	if !ok || len(chain) != 2 {
		t.Fatalf("start chain = %v, want 2 entries", start.Args["chain"])
	}
	if chain[0] != "sns-recon" {
		t.Errorf("chain[0] = %v, want sns-recon", chain[0])
	}

	phase := run.Steps[3]
	outcome, ok := phase.Args["outcome"].(map[string]any)
	if !ok {
		t.Fatalf("phase outcome = %v, want table", phase.Args["outcome"])
	}
	recon, ok := outcome["recon"].(map[string]any)
	if !ok {
		t.Fatalf("recon outcome = %v, want table", outcome["recon"])
	}
	if recon["clues_found"] != 4 {
		t.Errorf("clues_found = %v, want 4", recon["clues_found"])
	}
}

func TestLoadFromFileNameDefaultsToFilename(t *testing.T) {
	path := writeFixture(t, `return Playthrough.new()`)
	run, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load playthrough: %v", err)
	}
	if run.Name != "run" {
		t.Errorf("name = %q, want %q", run.Name, "run")
	}
}

func TestLoadFromFileRejectsNonPlaythrough(t *testing.T) {
	path := writeFixture(t, `return 42`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for non-playthrough return")
	}
}

func TestLoadFromFileRejectsBrokenScript(t *testing.T) {
	path := writeFixture(t, `this is not lua`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for broken script")
	}
}
