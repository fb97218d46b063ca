package main

import (
	"encoding/json"
	"os"
	"testing"

	"dsprep/internal/pipeline"
)

func TestInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t, 3, 2)

	out, _, err := runCLI(t, []string{"inspect", "--json", "--split"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var inspection pipeline.Inspection
	if err := json.Unmarshal([]byte(out), &inspection); err != nil {
		t.Fatalf("decode inspection: %v\n%s", err, out)
	}
	if inspection.Classes["pol"] != 6 {
		t.Fatalf("unexpected classes %v", inspection.Classes)
	}
	if len(inspection.Partitions) != 3 {
		t.Fatalf("expected partition counts, got %+v", inspection.Partitions)
	}
	if _, err := os.Stat(env.outputPath); !os.IsNotExist(err) {
		t.Fatalf("inspect must not create the output, stat err=%v", err)
	}
}

func TestInspectTableAndDump(t *testing.T) {
	env := setupCLITestEnv(t, 1, 2)

	out, _, err := runCLI(t, []string{"inspect"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Resolved 2 of 2 frames")
	requireContains(t, out, "Pol")

	out, _, err = runCLI(t, []string{"inspect", "--dump"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect --dump: %v", err)
	}
	requireContains(t, out, "FramePath")
	requireContains(t, out, "0000.png")
}
