// Package artifact reads and writes the on-disk pipeline artifacts: decoded
// face images, debug overlays, the cube state, the Kociemba code and the
// solution.
//
// Layout under the store directory:
//
//	images/<colour>.png
//	debug_steps/<colour>_ok.png | <colour>_partial.png
//	cube_state.json
//	cube_state.txt
//	kociemba_state.txt
//	solution.json
//
// Writes through one Store, and through namespaces derived from it, are
// serialized. Separate processes sharing a directory are not coordinated;
// give each run its own namespace instead.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/internal/state"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// File names inside a store directory.
const (
	ImagesDir     = "images"
	DebugDir      = "debug_steps"
	StateJSONFile = "cube_state.json"
	StateTextFile = "cube_state.txt"
	CodeFile      = "kociemba_state.txt"
	SolutionFile  = "solution.json"
)

// ErrInvalidSolution is returned when a solution file fails its checks.
var ErrInvalidSolution = errors.New("invalid solution file")

// ErrNoRuns is returned by Latest when no run directory holds the wanted
// files.
var ErrNoRuns = fmt.Errorf("no matching run: %w", fs.ErrNotExist)

// Store manages one artifact directory.
type Store struct {
	dir string
	mu  *sync.Mutex
}

// Open returns a store rooted at dir. The directory is created lazily.
func Open(dir string) *Store {
	return &Store{dir: dir, mu: &sync.Mutex{}}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Namespace returns a store for the subdirectory id. It shares the parent's
// write lock.
func (s *Store) Namespace(id string) *Store {
	return &Store{dir: filepath.Join(s.dir, id), mu: s.mu}
}

// NewRun returns a store under a fresh random namespace and its id.
func (s *Store) NewRun() (*Store, string) {
	id := uuid.NewString()
	return s.Namespace(id), id
}

// StateFiles are the files LoadState reads.
var StateFiles = []string{StateJSONFile, StateTextFile}

// Latest returns the namespace in which any of names was written most
// recently.
func (s *Store) Latest(names ...string) (*Store, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ImagesDir || e.Name() == DebugDir {
			continue
		}
		for _, name := range names {
			info, err := os.Stat(filepath.Join(s.dir, e.Name(), name))
			if err != nil {
				continue
			}
			if best == "" || info.ModTime().After(bestTime) {
				best, bestTime = e.Name(), info.ModTime()
			}
			break
		}
	}
	if best == "" {
		return nil, fmt.Errorf("%w under %s", ErrNoRuns, s.dir)
	}
	return s.Namespace(best), nil
}

// Path joins name onto the store directory.
func (s *Store) Path(name ...string) string {
	return filepath.Join(append([]string{s.dir}, name...)...)
}

// ImageName returns the base file name for a face: the colour of its center.
func ImageName(f types.Face) string {
	return string(f.CenterColor())
}

func (s *Store) write(rel string, data []byte) (string, error) {
	path := s.Path(rel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return path, nil
}

func (s *Store) read(rel string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// SaveImage writes a face image as PNG.
func (s *Store) SaveImage(f types.Face, img image.Image) (string, error) {
	data, err := ingest.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return s.write(filepath.Join(ImagesDir, ImageName(f)+".png"), data)
}

// LoadImage reads a face image saved by SaveImage.
func (s *Store) LoadImage(f types.Face) (image.Image, error) {
	data, err := s.read(filepath.Join(ImagesDir, ImageName(f)+".png"))
	if err != nil {
		return nil, err
	}
	img, _, err := ingest.DecodeBytes(data, 0)
	return img, err
}

// SaveOverlay writes a debug overlay with the given suffix.
func (s *Store) SaveOverlay(f types.Face, suffix string, img image.Image) (string, error) {
	data, err := ingest.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return s.write(filepath.Join(DebugDir, ImageName(f)+suffix+".png"), data)
}

// SaveState writes the state as nested JSON and as text.
func (s *Store) SaveState(st types.CubeState) error {
	var js bytes.Buffer
	if err := state.EncodeJSON(&js, st); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if _, err := s.write(StateJSONFile, js.Bytes()); err != nil {
		return err
	}

	var txt bytes.Buffer
	if err := state.WriteText(&txt, st); err != nil {
		return fmt.Errorf("failed to encode state text: %w", err)
	}
	_, err := s.write(StateTextFile, txt.Bytes())
	return err
}

// LoadState reads cube_state.json, falling back to cube_state.txt when the
// JSON file does not exist. Faces of the JSON file that could not be
// normalized are left out of the state and returned as skipped.
func (s *Store) LoadState() (types.CubeState, []state.FaceError, error) {
	data, err := s.read(StateJSONFile)
	if err == nil {
		return state.DecodeJSON(bytes.NewReader(data))
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, nil, err
	}

	data, txtErr := s.read(StateTextFile)
	if txtErr != nil {
		return nil, nil, err
	}
	st, err := state.ParseText(bytes.NewReader(data))
	return st, nil, err
}

// SaveCode writes the Kociemba code.
func (s *Store) SaveCode(code string) error {
	_, err := s.write(CodeFile, []byte(code))
	return err
}

// LoadCode reads the Kociemba code.
func (s *Store) LoadCode() (string, error) {
	data, err := s.read(CodeFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveSolution writes solution.json.
func (s *Store) SaveSolution(sol types.Solution) error {
	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal solution: %w", err)
	}
	_, err = s.write(SolutionFile, data)
	return err
}

// LoadSolution reads and checks solution.json.
func (s *Store) LoadSolution() (types.Solution, error) {
	data, err := s.read(SolutionFile)
	if err != nil {
		return types.Solution{}, err
	}
	var sol types.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return types.Solution{}, fmt.Errorf("%w: %v", ErrInvalidSolution, err)
	}
	return sol, CheckSolution(sol)
}

var validate = validator.New()

// CheckSolution verifies required fields and that the step count matches
// the move and step lists.
func CheckSolution(sol types.Solution) error {
	if err := validate.Struct(sol); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSolution, err)
	}
	if sol.StepCount != len(sol.Moves) {
		return fmt.Errorf("%w: step_count %d does not match %d moves", ErrInvalidSolution, sol.StepCount, len(sol.Moves))
	}
	if len(sol.ReadableSteps) != len(sol.Moves) {
		return fmt.Errorf("%w: %d readable steps for %d moves", ErrInvalidSolution, len(sol.ReadableSteps), len(sol.Moves))
	}
	return nil
}
