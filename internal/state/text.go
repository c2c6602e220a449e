package state

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var headerRe = regexp.MustCompile(`\b(UP|RIGHT|FRONT|DOWN|LEFT|BACK)\b`)

var headerFace = map[string]types.Face{
	"UP": types.FaceU, "RIGHT": types.FaceR, "FRONT": types.FaceF,
	"DOWN": types.FaceD, "LEFT": types.FaceL, "BACK": types.FaceB,
}

// WriteText writes the human-readable state format: a header per face
// followed by three rows like ['white', 'red', 'green'].
func WriteText(w io.Writer, state types.CubeState) error {
	bw := bufio.NewWriter(w)
	for _, f := range types.FaceOrder {
		labels, ok := state[f]
		if !ok {
			continue
		}
		fmt.Fprintf(bw, "%s (%s)\n", strings.ToUpper(f.Name()), f)
		for i := 0; i < len(labels); i += 3 {
			end := min(i+3, len(labels))
			quoted := make([]string, 0, 3)
			for _, l := range labels[i:end] {
				quoted = append(quoted, "'"+string(l)+"'")
			}
			fmt.Fprintf(bw, "[%s]\n", strings.Join(quoted, ", "))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// ParseText reads the human-readable format. A face is recorded once nine
// colours have been collected after its header.
func ParseText(r io.Reader) (types.CubeState, error) {
	state := make(types.CubeState)
	var (
		current types.Face
		pending []types.Label
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if f, ok := parseHeader(line); ok {
			current = f
			pending = pending[:0]
			continue
		}
		if current == "" || !strings.HasPrefix(line, "['") {
			continue
		}

		cleaned := strings.NewReplacer("'", "", "[", "", "]", "").Replace(line)
		for _, c := range strings.Split(cleaned, ",") {
			pending = append(pending, types.Label(strings.TrimSpace(c)))
		}
		if len(pending) == 9 {
			face := make([]types.Label, 9)
			copy(face, pending)
			state[current] = face
			pending = pending[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cube state text: %w", err)
	}
	return state, nil
}

func parseHeader(line string) (types.Face, bool) {
	if strings.HasPrefix(line, "[") {
		return "", false
	}
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return headerFace[m[1]], true
}
