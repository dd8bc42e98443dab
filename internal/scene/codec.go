package scene

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a descriptor that decodes but cannot be run.
var ErrInvalid = errors.New("scene: invalid descriptor")

// Encode returns the canonical YAML form of a scene.
// Field order follows the struct, so equal scenes encode to equal bytes.
func Encode(s Scene) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("scene: cannot encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("scene: cannot encode: %w", err)
	}
	return buf.String(), nil
}

// MustEncode is Encode for scenes built in code, where failure is a bug.
func MustEncode(s Scene) string {
	out, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode parses and validates a scene. Unknown fields are rejected.
func Decode(text string) (Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewBufferString(text))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return s, fmt.Errorf("scene: cannot decode: %w", err)
	}
	if err := Validate(s); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the structural rules an interpreter relies on.
func Validate(s Scene) error {
	if s.Genre == "" {
		return fmt.Errorf("%w: missing genre", ErrInvalid)
	}
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalid, s.Canvas.Width, s.Canvas.Height)
	}

	keys := make(map[string]bool, len(s.Assets))
	for _, a := range s.Assets {
		if a.Key == "" {
			return fmt.Errorf("%w: asset without key", ErrInvalid)
		}
		keys[a.Key] = true
	}
	for _, a := range s.Actors {
		if a.Asset != "" && !keys[a.Asset] {
			return fmt.Errorf("%w: actor %q references unknown asset %q", ErrInvalid, a.ID, a.Asset)
		}
		if a.Scale < 0 {
			return fmt.Errorf("%w: actor %q has negative scale", ErrInvalid, a.ID)
		}
	}

	switch s.Genre {
	case "runner":
		if s.Rules.Runner == nil {
			return missingRules(s.Genre)
		}
	case "racing":
		if s.Rules.Racing == nil {
			return missingRules(s.Genre)
		}
	case "bomberman":
		r := s.Rules.Bomberman
		if r == nil {
			return missingRules(s.Genre)
		}
		if r.Tile <= 0 || len(r.Layout) == 0 {
			return fmt.Errorf("%w: bomberman needs a tile size and a layout", ErrInvalid)
		}
	case "sudoku":
		r := s.Rules.Sudoku
		if r == nil {
			return missingRules(s.Genre)
		}
		if err := validGrid("puzzle", r.Puzzle); err != nil {
			return err
		}
		if err := validGrid("solution", r.Solution); err != nil {
			return err
		}
	case "tetris":
		r := s.Rules.Tetris
		if r == nil {
			return missingRules(s.Genre)
		}
		if r.Cols <= 0 || r.Rows <= 0 || len(r.Shapes) == 0 {
			return fmt.Errorf("%w: tetris needs a board and shapes", ErrInvalid)
		}
	}
	return nil
}

func missingRules(genre string) error {
	return fmt.Errorf("%w: %s scene without %s rules", ErrInvalid, genre, genre)
}

func validGrid(name string, rows []string) error {
	if len(rows) != 9 {
		return fmt.Errorf("%w: sudoku %s has %d rows", ErrInvalid, name, len(rows))
	}
	for i, row := range rows {
		if len(row) != 9 {
			return fmt.Errorf("%w: sudoku %s row %d has %d cells", ErrInvalid, name, i, len(row))
		}
		for _, c := range row {
			if c < '0' || c > '9' {
				return fmt.Errorf("%w: sudoku %s row %d has %q", ErrInvalid, name, i, c)
			}
		}
	}
	return nil
}
