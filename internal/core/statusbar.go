package core

import (
	"fmt"

	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/lanzador/internal/statusbar"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
)

// StatusStrip is the row of system readings under the result list.
type StatusStrip struct {
	box    *gtk.Box
	labels map[string]*gtk.Label
}

// NewStatusStrip creates one label per module name, initially showing the
// placeholder.
func NewStatusStrip(names []string) (*StatusStrip, error) {
	box, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create status box: %w", err)
	}
	box.SetName("status-strip")

	strip := &StatusStrip{box: box, labels: make(map[string]*gtk.Label, len(names))}
	for _, name := range names {
		label, err := gtk.LabelNew(statusText(name, statusbar.Placeholder))
		if err != nil {
			return nil, fmt.Errorf("failed to create status label: %w", err)
		}
		label.SetName("status-" + name)
		box.PackStart(label, false, false, 0)
		strip.labels[name] = label
	}

	return strip, nil
}

// Widget returns the container to pack into the window.
func (s *StatusStrip) Widget() *gtk.Box {
	return s.box
}

// Update writes a snapshot into the labels. GTK main thread only.
func (s *StatusStrip) Update(snapshot statusbar.Snapshot) {
	for name, label := range s.labels {
		label.SetText(statusText(name, snapshot.Get(name)))
	}
}

func statusText(name, value string) string {
	return modules.Caption(name) + " " + value
}
