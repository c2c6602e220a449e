package types

// Solution is the terminal artifact of the pipeline. Field names match the
// persisted solution.json file.
type Solution struct {
	KociembaCode  string   `json:"kociemba_code" validate:"required,len=54"`
	RawSolution   string   `json:"raw_solution"`
	Moves         []string `json:"moves" validate:"required"`
	ReadableSteps []string `json:"readable_solution" validate:"required"`
	StepCount     int      `json:"step_count" validate:"gte=0"`

	// Verified is set when the moves were replayed on the facelet model and
	// left the cube solved. Not persisted.
	Verified bool `json:"-"`
}
