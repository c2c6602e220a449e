package artifact

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

func sampleState() types.CubeState {
	st := make(types.CubeState)
	for _, f := range types.FaceOrder {
		face := make([]types.Label, 9)
		for i := range face {
			face[i] = f.CenterColor()
		}
		st[f] = face
	}
	return st
}

func TestImageName(t *testing.T) {
	want := map[types.Face]string{
		types.FaceU: "white", types.FaceR: "red", types.FaceF: "green",
		types.FaceD: "yellow", types.FaceL: "orange", types.FaceB: "blue",
	}
	for f, name := range want {
		if got := ImageName(f); got != name {
			t.Errorf("ImageName(%s) = %q, want %q", f, got, name)
		}
	}
}

func TestImageRoundTrip(t *testing.T) {
	s := Open(t.TempDir())
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	path, err := s.SaveImage(types.FaceR, img)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if filepath.Base(path) != "red.png" || filepath.Base(filepath.Dir(path)) != ImagesDir {
		t.Errorf("path = %s", path)
	}

	got, err := s.LoadImage(types.FaceR)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if r, _, _, _ := got.At(1, 1).RGBA(); r>>8 != 255 {
		t.Errorf("pixel red = %d", r>>8)
	}

	if _, err := s.LoadImage(types.FaceU); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing image err = %v, want fs.ErrNotExist", err)
	}
}

func TestSaveOverlay(t *testing.T) {
	s := Open(t.TempDir())
	path, err := s.SaveOverlay(types.FaceF, "_partial", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatal(err)
	}
	if want := s.Path(DebugDir, "green_partial.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := Open(t.TempDir())
	st := sampleState()
	st[types.FaceU][0] = types.Red

	if err := s.SaveState(st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, skipped, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v", skipped)
	}
	if len(got) != 6 || got[types.FaceU][0] != types.Red || got[types.FaceB][8] != types.Blue {
		t.Errorf("state = %v", got)
	}

	// without the JSON file the text form is used
	if err := os.Remove(s.Path(StateJSONFile)); err != nil {
		t.Fatal(err)
	}
	got, _, err = s.LoadState()
	if err != nil {
		t.Fatalf("LoadState from text: %v", err)
	}
	if got[types.FaceU][0] != types.Red {
		t.Errorf("text state U = %v", got[types.FaceU])
	}
}

func TestLoadStateMissing(t *testing.T) {
	if _, _, err := Open(t.TempDir()).LoadState(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadStateKeepsGoodFaces(t *testing.T) {
	s := Open(t.TempDir())
	doc := `{"U": null, "R": ["red","red","red","red","red","red","red","red","red"]}`
	if err := os.WriteFile(s.Path(StateJSONFile), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	got, skipped, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(got[types.FaceR]) != 9 {
		t.Errorf("R = %v", got[types.FaceR])
	}
	if _, ok := got[types.FaceU]; ok {
		t.Error("malformed U face kept")
	}
	if len(skipped) != 1 || skipped[0].Face != types.FaceU {
		t.Errorf("skipped = %v", skipped)
	}
}

func TestLatest(t *testing.T) {
	root := Open(t.TempDir())
	if _, err := root.Latest(StateFiles...); !errors.Is(err, ErrNoRuns) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("empty root err = %v, want ErrNoRuns", err)
	}

	older, _ := root.NewRun()
	newer, id := root.NewRun()
	st := sampleState()
	if err := older.SaveState(st); err != nil {
		t.Fatal(err)
	}
	if err := newer.SaveState(st); err != nil {
		t.Fatal(err)
	}
	// a run without a state is not a candidate
	if err := root.Namespace("empty").SaveCode("UUU"); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	for _, name := range []string{StateJSONFile, StateTextFile} {
		if err := os.Chtimes(older.Path(name), past, past); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := root.Latest(StateFiles...)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Dir() != root.Path(id) {
		t.Errorf("Latest = %s, want %s", latest.Dir(), root.Path(id))
	}

	latest, err = root.Latest(CodeFile)
	if err != nil || latest.Dir() != root.Path("empty") {
		t.Errorf("Latest(code) = %v, %v", latest, err)
	}
}

func TestCodeRoundTrip(t *testing.T) {
	s := Open(t.TempDir())
	if err := s.SaveCode("UUU"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.LoadCode(); err != nil || got != "UUU" {
		t.Errorf("LoadCode = %q, %v", got, err)
	}
}

func validSolution() types.Solution {
	return types.Solution{
		KociembaCode:  "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB",
		RawSolution:   "R U (2f)",
		Moves:         []string{"R", "U"},
		ReadableSteps: []string{"Right face clockwise 90°", "Up face clockwise 90°"},
		StepCount:     2,
		Verified:      true,
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	s := Open(t.TempDir())
	if err := s.SaveSolution(validSolution()); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSolution()
	if err != nil {
		t.Fatalf("LoadSolution: %v", err)
	}
	if got.StepCount != 2 || got.Moves[1] != "U" {
		t.Errorf("solution = %+v", got)
	}
	if got.Verified {
		t.Error("Verified must not be persisted")
	}
}

func TestCheckSolution(t *testing.T) {
	tests := map[string]func(*types.Solution){
		"short code":      func(s *types.Solution) { s.KociembaCode = "UUU" },
		"missing moves":   func(s *types.Solution) { s.Moves = nil },
		"step mismatch":   func(s *types.Solution) { s.StepCount = 3 },
		"readable length": func(s *types.Solution) { s.ReadableSteps = s.ReadableSteps[:1] },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			sol := validSolution()
			mutate(&sol)
			if err := CheckSolution(sol); !errors.Is(err, ErrInvalidSolution) {
				t.Errorf("err = %v, want ErrInvalidSolution", err)
			}
		})
	}
	if err := CheckSolution(validSolution()); err != nil {
		t.Errorf("valid solution rejected: %v", err)
	}
}

func TestLoadSolutionMalformed(t *testing.T) {
	s := Open(t.TempDir())
	if _, err := s.write(SolutionFile, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadSolution(); !errors.Is(err, ErrInvalidSolution) {
		t.Errorf("err = %v, want ErrInvalidSolution", err)
	}
}

func TestNamespaces(t *testing.T) {
	root := Open(t.TempDir())
	run, id := root.NewRun()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("run id %q is not a uuid: %v", id, err)
	}
	if run.Dir() != filepath.Join(root.Dir(), id) {
		t.Errorf("run dir = %s", run.Dir())
	}

	other, _ := root.NewRun()
	if err := run.SaveCode("A"); err != nil {
		t.Fatal(err)
	}
	if err := other.SaveCode("B"); err != nil {
		t.Fatal(err)
	}
	a, _ := run.LoadCode()
	b, _ := other.LoadCode()
	if a != "A" || b != "B" {
		t.Errorf("namespaced codes = %q, %q", a, b)
	}
}

// Concurrent writers to one path are serialized: the file always holds one
// complete payload, never an interleaving.
func TestConcurrentWritesSerialized(t *testing.T) {
	s := Open(t.TempDir())
	payloads := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		p := fmt.Sprintf("%054d", i)
		payloads[p] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.SaveCode(p); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := s.LoadCode()
	if err != nil {
		t.Fatal(err)
	}
	if !payloads[got] {
		t.Errorf("file holds %q, not one of the written payloads", got)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files: %d entries", len(entries))
	}
}
