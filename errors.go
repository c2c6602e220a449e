package gocube

import (
	"errors"

	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/internal/kociemba"
	"github.com/SeamusWaldron/gocube_vision/internal/solution"
	"github.com/SeamusWaldron/gocube_vision/internal/solver"
)

// Sentinel errors for the gocube package. Errors returned by the pipeline
// wrap these; test with errors.Is.
var (
	// Input errors
	ErrNoImages     = errors.New("gocube: no face images given")
	ErrDecodeFailed = ingest.ErrDecode

	// State errors
	ErrStateIncomplete = errors.New("gocube: cube state incomplete")
	ErrStateInvalid    = kociemba.ErrInvalid

	// Solver errors
	ErrSolverFailed = solver.ErrSolverFailed
	ErrNoSolution   = solver.ErrNoSolution

	// Parsing errors
	ErrInvalidNotation = solution.ErrInvalidNotation
)
