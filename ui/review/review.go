// Package review provides a desktop window for inspecting a reference and
// candidate pair alongside its fidelity score breakdown.
package review

import (
	"fmt"
	"image"

	"pose-gate/internal/fidelity"
	"pose-gate/internal/silhouette"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Pair bundles everything shown for one comparison.
type Pair struct {
	Source     image.Image
	Candidate  image.Image
	EdgeMap    image.Image // may be nil
	Fidelity   fidelity.Result
	Silhouette *silhouette.Result // set when the fallback scored the pair
}

// Window is the review window.
type Window struct {
	win fyne.Window
}

// New builds a review window for one pair.
func New(app fyne.App, pair Pair) *Window {
	w := &Window{win: app.NewWindow("Pose Review")}
	w.win.SetContent(buildContent(pair))
	w.win.Resize(fyne.NewSize(1100, 640))
	return w
}

// ShowAndRun displays the window and enters the event loop.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

func buildContent(pair Pair) fyne.CanvasObject {
	src := fynecanvas.NewImageFromImage(pair.Source)
	src.FillMode = fynecanvas.ImageFillContain
	cand := fynecanvas.NewImageFromImage(pair.Candidate)
	cand.FillMode = fynecanvas.ImageFillContain

	images := container.NewGridWithColumns(2,
		container.NewBorder(widget.NewLabel("Reference"), nil, nil, nil, src),
		container.NewBorder(widget.NewLabel("Candidate"), nil, nil, nil, cand),
	)
	if pair.EdgeMap != nil {
		edge := fynecanvas.NewImageFromImage(pair.EdgeMap)
		edge.FillMode = fynecanvas.ImageFillContain
		images = container.NewGridWithColumns(3,
			container.NewBorder(widget.NewLabel("Reference"), nil, nil, nil, src),
			container.NewBorder(widget.NewLabel("Edge Map"), nil, nil, nil, edge),
			container.NewBorder(widget.NewLabel("Candidate"), nil, nil, nil, cand),
		)
	}

	return container.NewBorder(nil, nil, nil, scorePanel(pair), images)
}

// scorePanel renders the score breakdown on the right-hand side.
func scorePanel(pair Pair) fyne.CanvasObject {
	rows := []fyne.CanvasObject{
		widget.NewLabelWithStyle("Fidelity", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	}

	if pair.Silhouette != nil {
		s := pair.Silhouette
		rows = append(rows,
			widget.NewLabel("Scored by silhouette fallback"),
			widget.NewLabel(fmt.Sprintf("Score: %.3f  (pass: %v)", s.Score, s.Passed)),
			widget.NewLabel(fmt.Sprintf("IoU: %.3f", s.IoU)),
			widget.NewLabel(fmt.Sprintf("Shape: %.3f", s.ShapeScore)),
			widget.NewLabel(fmt.Sprintf("Profile: %.3f", s.ProfileScore)),
		)
	} else {
		r := pair.Fidelity
		verdict := "FAIL"
		if r.Passed {
			verdict = "PASS"
		}
		rows = append(rows,
			widget.NewLabel(fmt.Sprintf("%s  score %.3f", verdict, r.PoseScore)),
			widget.NewLabel(fmt.Sprintf("Angle: %.3f  Position: %.3f", r.AngleScore, r.PositionScore)),
			widget.NewLabel(fmt.Sprintf("Max joint delta: %.1f°", r.MaxJointDelta)),
			widget.NewLabel(fmt.Sprintf("Joints compared: %d", r.ComparedJointCount)),
		)
		if r.MirrorSuspected {
			rows = append(rows, widget.NewLabel("Mirrored output suspected"))
		}
		if r.FailureReason != fidelity.FailureNone {
			rows = append(rows, widget.NewLabel(fmt.Sprintf("Reason: %s", r.FailureReason)))
		}
		if len(r.JointDeltas) > 0 {
			rows = append(rows, widget.NewLabelWithStyle("Joint deltas",
				fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
			for _, d := range r.JointDeltas {
				rows = append(rows, widget.NewLabel(fmt.Sprintf("%-16s %6.1f°", d.Joint, d.DegreesDelta)))
			}
		}
	}

	return container.NewVScroll(container.NewVBox(rows...))
}
