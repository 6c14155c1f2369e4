package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/refine"
)

const lShape = `@ 0 0 # 1 0 0
@ 20 0
@ 20 10 # 0.5
@ 10 10
@ 10 20
@ 0 20 # 0 0 1
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); !errors.Is(err, errNoInput) {
		t.Errorf("err = %v, want errNoInput", err)
	}
}

func TestRunRequiresOutputForRendering(t *testing.T) {
	in := writeTemp(t, "l.pts", lShape)
	for _, flag := range []string{"-s", "-m", "-p", "-g"} {
		t.Run(flag, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run([]string{"-i", in, flag}, &stdout, &stderr); !errors.Is(err, errNoOutput) {
				t.Errorf("err = %v, want errNoOutput", err)
			}
		})
	}
}

func TestRunWritesOutputs(t *testing.T) {
	in := writeTemp(t, "l.pts", lShape)
	prefix := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	args := []string{"-i", in, "-o", prefix, "-s", "-m", "-g", "-verbose", "-r", "500"}
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	ppm, err := os.ReadFile(prefix + ".ppm")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(ppm, []byte("P6\n500 500\n255\n")) {
		t.Errorf("ppm header = %q", ppm[:min(len(ppm), 16)])
	}
	svgOut, err := os.ReadFile(prefix + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svgOut, []byte("<svg")) {
		t.Error("svg output has no <svg> element")
	}
	gj, err := os.ReadFile(prefix + ".geojson")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(gj, []byte(`"FeatureCollection"`)) {
		t.Error("geojson output is not a feature collection")
	}

	out := stdout.String()
	for _, want := range []string{"triangles", "steps", "smallest angle"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q lacks %q", out, want)
		}
	}
	if !strings.Contains(stderr.String(), "input parsed") {
		t.Errorf("verbose log lacks input message: %s", stderr.String())
	}
}

func TestRunSharpOutline(t *testing.T) {
	in := writeTemp(t, "trapezoid.pts", "@ 0 0\n@ 10 0\n@ 7 1\n@ 3 1\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-i", in, "-v"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Converged") {
		t.Errorf("refinement of an outline with 18° corners did not converge: %s", stdout.String())
	}
}

func TestRunConfigFile(t *testing.T) {
	in := writeTemp(t, "l.pts", lShape)
	cfg := writeTemp(t, "refine.yaml", "refine:\n  max_steps: 0\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-c", cfg, "-i", in, "-v"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(stdout.String(), "steps") {
		t.Errorf("refinement ran with max_steps 0: %s", stdout.String())
	}

	// Flags override the file.
	stdout.Reset()
	if err := run([]string{"-c", cfg, "-i", in, "-v", "-r", "50"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "steps") {
		t.Errorf("-r did not override max_steps: %s", stdout.String())
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty file keeps defaults", "", false},
		{"partial", "svg:\n  width: 400\n", false},
		{"antialiased fitted image", "image:\n  fit: true\n  antialias: true\n", false},
		{"unknown key", "refine:\n  max_stpes: 3\n", true},
		{"bad angle", "refine:\n  min_angle_deg: 75\n", true},
		{"negative area", "refine:\n  max_area: -1\n", true},
		{"no room in svg", "svg:\n  width: 10\n  margin: 10\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeTemp(t, "c.yaml", tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Refine.MaxSteps != 1000 {
				t.Errorf("max_steps = %d, want default 1000", cfg.Refine.MaxSteps)
			}
		})
	}
}

func TestPointColorDeterministic(t *testing.T) {
	m := refine.NewMesh()
	a := m.NewPoint(refine.V2(1.5, -2))
	b := m.NewPoint(refine.V2(1.5, -2.000001))
	again := refine.NewMesh().NewPoint(refine.V2(1.5, -2))

	if pointColor(a) != pointColor(again) {
		t.Error("equal positions produced different colors")
	}
	c := pointColor(b)
	if c.A != 1 || c.R < 0 || c.R > 1 || c.G < 0 || c.G > 1 || c.B < 0 || c.B > 1 {
		t.Errorf("color %+v out of range", c)
	}
}
