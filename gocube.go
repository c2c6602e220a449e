// Package gocube reconstructs the state of a Rubik's Cube from six face
// photographs and turns a two-phase solver's output into a structured
// solution.
//
// # Quick Start
//
// Build a pipeline from configuration and run both halves:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := gocube.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	rec := p.Recognize(ctx, map[gocube.Face]string{
//	    gocube.FaceU: upBase64,
//	    // ... one entry per face
//	})
//	if !rec.Success {
//	    log.Fatal(rec.Error)
//	}
//
//	sol := p.Solve(ctx, rec.Data.State)
//	fmt.Println(sol.Data.ReadableSteps)
//
// # Recognition
//
// Each face image is resized to a square, searched for sticker contours and
// classified by CIEDE2000 distance to a six-colour reference table. When
// exactly nine stickers are found they are ordered into a 3x3 grid;
// otherwise a blind 3x3 grid over the image center is sampled instead, so a
// face always yields nine labels. Undecodable images yield a face of
// placeholder labels.
//
// # Solving
//
// The cube state is encoded as a 54-character Kociemba string in U, R, F,
// D, L, B order and validated (length and the six centers). The external
// solver's output is decoded into normalized moves and readable steps, and
// replayed on a facelet model to check that it solves the cube.
//
// # Standalone Cube Model
//
// The Cube type can be used on its own:
//
//	cube, err := gocube.FromKociemba(code)
//	cube.Apply(gocube.R, gocube.U, gocube.RPrime, gocube.UPrime)
//	fmt.Println("Solved:", cube.IsSolved())
package gocube
