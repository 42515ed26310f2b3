package tempo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	Mt "github.com/maroda/tempo/types"
)

const (
	screenGutter = 4

	// scoreBarWidth is the character width of a full 100-score bar
	scoreBarWidth = 40
)

// scoreBarRunes shade a partial trailing cell, coarse to fine
var scoreBarRunes = []rune("▁▂▃▄▅▆▇█")

// ScoreView is a terminal display of the most recent report
type ScoreView struct {
	MU     sync.Mutex
	Screen tcell.Screen
	View   *View           // Data server backing this display
	Report *Mt.ScoreReport // Latest report shown
}

// NewScoreView creates the tcell screen that displays scores
func NewScoreView(v *View) (*ScoreView, error) {
	if v == nil {
		slog.Error("Could not get a data View for display")
		return nil, errors.New("data view not found")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("Could not get new screen", slog.Any("Error", err))
		return nil, err
	}
	if err := screen.Init(); err != nil {
		slog.Error("Could not initialize screen", slog.Any("Error", err))
		return nil, err
	}

	// Define and configure the default screen
	defStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGreen)
	screen.SetStyle(defStyle)

	sv := &ScoreView{
		Screen: screen,
		View:   v,
	}

	sv.UpdateScreen()

	return sv, nil
}

// SetReport swaps the displayed report
func (sv *ScoreView) SetReport(r *Mt.ScoreReport) {
	sv.MU.Lock()
	sv.Report = r
	sv.MU.Unlock()
}

// ScoreBar renders a 0-100 score as a block-rune bar
func ScoreBar(score float64, width int) string {
	if width < 1 {
		return ""
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	cells := score / 100 * float64(width)
	full := int(cells)
	out := make([]rune, 0, width)
	for i := 0; i < full; i++ {
		out = append(out, scoreBarRunes[len(scoreBarRunes)-1])
	}

	// Partial trailing cell picks a shade by its fraction
	frac := cells - float64(full)
	if frac > 0 && full < width {
		idx := int(frac * float64(len(scoreBarRunes)))
		if idx >= len(scoreBarRunes) {
			idx = len(scoreBarRunes) - 1
		}
		out = append(out, scoreBarRunes[idx])
	}

	return string(out)
}

// ScoreStyle colors a score by the overall-comment bands
func ScoreStyle(score float64) tcell.Style {
	base := tcell.StyleDefault.Background(tcell.ColorBlack)
	switch {
	case score >= 85:
		return base.Foreground(tcell.ColorLightGreen)
	case score >= 70:
		return base.Foreground(tcell.ColorYellow)
	case score >= 55:
		return base.Foreground(tcell.ColorDarkOrange)
	default:
		return base.Foreground(tcell.ColorMaroon)
	}
}

func (sv *ScoreView) DrawText(x1, y1, x2, y2 int, text string) {
	row := y1
	col := x1
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightSteelBlue)
	for _, r := range text {
		sv.Screen.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

// DrawViewBorder displays the outline of the View
func (sv *ScoreView) DrawViewBorder(width, height int) {
	svStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGreen)
	sv.Screen.SetContent(0, 0, tcell.RuneULCorner, nil, svStyle)
	for i := 1; i < width; i++ {
		sv.Screen.SetContent(i, 0, tcell.RuneHLine, nil, svStyle)
	}
	sv.Screen.SetContent(width, 0, tcell.RuneURCorner, nil, svStyle)

	for i := 1; i < height; i++ {
		sv.Screen.SetContent(0, i, tcell.RuneVLine, nil, svStyle)
	}

	sv.Screen.SetContent(0, height, tcell.RuneLLCorner, nil, svStyle)

	for i := 1; i < height; i++ {
		sv.Screen.SetContent(width, i, tcell.RuneVLine, nil, svStyle)
	}

	sv.Screen.SetContent(width, height, tcell.RuneLRCorner, nil, svStyle)

	for i := 1; i < width; i++ {
		sv.Screen.SetContent(i, height, tcell.RuneHLine, nil, svStyle)
	}
}

// DrawScoreView draws the full report display with tcell
func (sv *ScoreView) DrawScoreView() {
	width, height := sv.GetScreenSize()
	sv.DrawViewBorder(width-1, height-1)

	sv.MU.Lock()
	report := sv.Report
	sv.MU.Unlock()

	if report == nil {
		sv.DrawText(2, 2, width-2, 2, "Tempo :: waiting for an analysis run...")
		sv.DrawText(2, height-2, width-2, height-2, "ESC to quit")
		return
	}

	title := fmt.Sprintf("Tempo :: %s :: overall %.1f (%s)",
		report.JobID, report.Overall, report.Quality)
	sv.DrawText(2, 1, width-2, 1, title)
	sv.DrawText(2, 2, width-2, 3, report.Comment)

	// One row per phase: name, bar, number
	barW := scoreBarWidth
	if width-30 < barW {
		barW = width - 30
	}
	for i, ps := range report.Phases {
		y := screenGutter + i
		if y >= height-2 {
			break
		}
		label := fmt.Sprintf("%-14s", ps.DisplayName)
		sv.DrawText(2, y, 2+len(label), y, label)

		bar := ScoreBar(ps.Score, barW)
		style := ScoreStyle(ps.Score)
		col := 18
		for _, r := range bar {
			sv.Screen.SetContent(col, y, r, nil, style)
			col++
		}

		num := fmt.Sprintf(" %5.1f", ps.Score)
		sv.DrawText(18+barW+1, y, 18+barW+1+len(num), y, num)
	}

	sv.DrawText(2, height-2, width-2, height-2, "ESC to quit, r to refresh")
}

func (sv *ScoreView) exit() {
	sv.Screen.Fini()
	os.Exit(0)
}

// Running Loop to handle events
func (sv *ScoreView) handleKeyBoardEvent() {
	for {
		ev := sv.Screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			sv.ResizeScreen()
		case *tcell.EventKey:
			// Catch quit and exit
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				sv.exit()
			}

			// Refresh from the store with 'r'
			if ev.Rune() == 'r' {
				sv.RefreshLatest()
				sv.UpdateScreen()
			}
		}
	}
}

// RefreshLatest pulls the newest stored report into the display
func (sv *ScoreView) RefreshLatest() {
	if sv.View == nil || sv.View.Store == nil {
		return
	}

	end := time.Now().UTC().Add(time.Minute)
	reports, err := sv.View.Store.QueryRange(end.Add(-24*time.Hour), end)
	if err != nil {
		slog.Error("Could not refresh reports", slog.Any("Error", err))
		return
	}
	if len(reports) == 0 {
		return
	}

	// Keys sort chronologically so the last one is the newest
	sv.SetReport(reports[len(reports)-1])
}

func (sv *ScoreView) GetScreenSize() (int, int) {
	width, height := sv.Screen.Size()
	return width, height
}

// ResizeScreen resizes the display after terminal changes
func (sv *ScoreView) ResizeScreen() {
	sv.Screen.Sync()
	sv.UpdateScreen()
}

func (sv *ScoreView) UpdateScreen() {
	sv.Screen.Clear()
	sv.DrawScoreView()
	sv.Screen.Show()
}

// run updates the display periodically from the report store
func (sv *ScoreView) run() {
	// Panic recovery and logging
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in run loop", slog.Any("panic", r))
			slog.Error("Recovered from panic", slog.String("stack", string(debug.Stack())))
			debug.PrintStack()
		}
	}()

	slog.Info("Starting ScoreView")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		sv.RefreshLatest()
		sv.UpdateScreen()
	}
}

// StartScoreView runs the terminal display alongside the web server
func StartScoreView(v *View, addr string) error {
	sv, err := NewScoreView(v)
	if err != nil {
		return err
	}

	// Run the display loop
	go sv.run()

	// Run the web server
	go func() {
		if err := v.StartWeb(addr); err != nil {
			slog.Error("Could not start web server", slog.Any("Error", err))
		}
	}()

	sv.handleKeyBoardEvent()

	return nil
}
