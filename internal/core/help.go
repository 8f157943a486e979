package core

import (
	"fmt"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/lanzador/internal/launcher"
)

// HelpWindow lists every prefix, command and key binding. Closing it runs
// onClose, which the launcher uses to clear the search text.
type HelpWindow struct {
	window  *gtk.Window
	onClose func()
}

// NewHelpWindow builds the help window, transient for parent.
func NewHelpWindow(parent *gtk.Window, sections []launcher.HelpSection, onClose func()) (*HelpWindow, error) {
	window, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("failed to create help window: %w", err)
	}
	window.SetName("help-window")
	window.SetTitle("Help")
	window.SetTransientFor(parent)
	window.SetModal(true)
	window.SetPosition(gtk.WIN_POS_CENTER_ON_PARENT)
	window.SetDefaultSize(420, -1)

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create help box: %w", err)
	}
	box.SetMarginStart(16)
	box.SetMarginEnd(16)
	box.SetMarginTop(8)
	box.SetMarginBottom(16)
	window.Add(box)

	for _, section := range sections {
		title, err := gtk.LabelNew(section.Title)
		if err != nil {
			return nil, err
		}
		title.SetHAlign(gtk.ALIGN_START)
		addClass(title, "help-title")
		box.PackStart(title, false, false, 0)

		for _, line := range section.Lines {
			label, err := gtk.LabelNew("  " + line)
			if err != nil {
				return nil, err
			}
			label.SetHAlign(gtk.ALIGN_START)
			box.PackStart(label, false, false, 0)
		}
	}

	closeButton, err := gtk.ButtonNewWithLabel("Close")
	if err != nil {
		return nil, fmt.Errorf("failed to create close button: %w", err)
	}
	closeButton.SetMarginTop(12)
	box.PackEnd(closeButton, false, false, 0)

	h := &HelpWindow{window: window, onClose: onClose}

	closeButton.Connect("clicked", func() {
		h.Hide()
	})
	window.Connect("delete-event", func() bool {
		h.Hide()
		return true
	})
	window.Connect("key-press-event", func(win *gtk.Window, event *gdk.Event) bool {
		if gdk.EventKeyNewFromEvent(event).KeyVal() == gdk.KEY_Escape {
			h.Hide()
			return true
		}
		return false
	})

	return h, nil
}

func (h *HelpWindow) Show() {
	h.window.ShowAll()
	h.window.Present()
}

func (h *HelpWindow) Hide() {
	if !h.window.IsVisible() {
		return
	}
	h.window.Hide()
	if h.onClose != nil {
		h.onClose()
	}
}

func (h *HelpWindow) IsVisible() bool {
	return h.window.IsVisible()
}

type styled interface {
	GetStyleContext() (*gtk.StyleContext, error)
}

func addClass(w styled, class string) {
	ctx, err := w.GetStyleContext()
	if err != nil {
		return
	}
	ctx.AddClass(class)
}
