package assembler

import (
	"github.com/vovakirdan/arcade-studio/internal/scene"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// The fixed sudoku puzzle and its solution.
var (
	sudokuPuzzle = []string{
		"530070000",
		"600195000",
		"098000060",
		"800060003",
		"400803001",
		"700020006",
		"060000280",
		"000419005",
		"000080079",
	}
	sudokuSolution = []string{
		"534678912",
		"672195348",
		"198342567",
		"859761423",
		"426853791",
		"713924856",
		"961537284",
		"287419635",
		"345286179",
	}
)

// SudokuSolution returns a copy of the solution carried by every sudoku scene.
func SudokuSolution() []string {
	return append([]string(nil), sudokuSolution...)
}

func assembleSudoku(g spec.GameSpec, opt Options) scene.Scene {
	return scene.Scene{
		Genre:  string(spec.Sudoku),
		Title:  "Sudoku",
		Canvas: canvas(opt, backgroundColor(g)),
		Assets: backgroundAssets(g),
		Texts: []scene.Text{
			{X: centerX(opt), Y: 30, Content: helpText(g.Control, "arrows (select), 1-9 (fill), 0/Backspace (clear), Enter (check)"), Size: 18, Color: helpColor},
		},
		Rules: scene.Rules{Sudoku: &scene.SudokuRules{
			Puzzle:   append([]string(nil), sudokuPuzzle...),
			Solution: SudokuSolution(),
		}},
		Help: "Arrows: select  1-9: fill  0/Bksp: clear  Enter: check  Q: quit",
	}
}

// The seven tetrominoes.
var tetrominoes = []scene.Shape{
	{Name: "I", Color: "#00CDCD", Cells: []string{"####"}},
	{Name: "O", Color: "#CDCD00", Cells: []string{"##", "##"}},
	{Name: "T", Color: "#CD00CD", Cells: []string{".#.", "###"}},
	{Name: "S", Color: "#00CD00", Cells: []string{".##", "##."}},
	{Name: "Z", Color: "#CD0000", Cells: []string{"##.", ".##"}},
	{Name: "J", Color: "#0000EE", Cells: []string{"#..", "###"}},
	{Name: "L", Color: "#FF8700", Cells: []string{"..#", "###"}},
}

func assembleTetris(g spec.GameSpec, opt Options) scene.Scene {
	t := opt.Genres.Tetris
	shapes := make([]scene.Shape, len(tetrominoes))
	for i, s := range tetrominoes {
		s.Cells = append([]string(nil), s.Cells...)
		shapes[i] = s
	}

	return scene.Scene{
		Genre:  string(spec.Tetris),
		Title:  "Tetris",
		Canvas: canvas(opt, backgroundColor(g)),
		Assets: backgroundAssets(g),
		Texts: []scene.Text{
			{X: centerX(opt), Y: 30, Content: helpText(g.Control, "Left/Right (move), Down (soft drop), Up (rotate), Space (hard drop)"), Size: 18, Color: helpColor},
		},
		Rules: scene.Rules{Tetris: &scene.TetrisRules{
			Cols:          10,
			Rows:          20,
			TickMS:        t.TickMS,
			PointsPerLine: t.PointsPerLine,
			Shapes:        shapes,
		}},
		GameOver: &scene.GameOver{Text: gameOverText},
		Help:     "Arrows: move/rotate  Space: drop  R: restart  P: pause  Q: quit",
	}
}
