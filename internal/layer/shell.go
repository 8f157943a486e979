// Package layer binds the parts of gtk-layer-shell the launcher window uses.
package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <stdlib.h>
#include <gtk-layer-shell.h>
*/
import "C"
import "unsafe"

// Layer represents a layer shell layer
type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

// KeyboardMode represents keyboard focus mode
type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)

// IsSupported reports whether the compositor speaks the layer shell protocol.
func IsSupported() bool {
	return C.gtk_layer_is_supported() != 0
}

// InitForWindow initializes a window as a layer shell surface
func InitForWindow(window unsafe.Pointer) {
	C.gtk_layer_init_for_window((*C.GtkWindow)(window))
}

// SetNamespace sets the namespace compositors use in layer rules.
func SetNamespace(window unsafe.Pointer, namespace string) {
	cs := C.CString(namespace)
	defer C.free(unsafe.Pointer(cs))
	C.gtk_layer_set_namespace((*C.GtkWindow)(window), cs)
}

// SetLayer sets the layer for a layer shell surface
func SetLayer(window unsafe.Pointer, layer Layer) {
	C.gtk_layer_set_layer((*C.GtkWindow)(window), C.GtkLayerShellLayer(layer))
}

// SetExclusiveZone sets the exclusive zone for the surface
func SetExclusiveZone(window unsafe.Pointer, zone int) {
	C.gtk_layer_set_exclusive_zone((*C.GtkWindow)(window), C.int(zone))
}

// SetKeyboardMode sets the keyboard interactivity mode
func SetKeyboardMode(window unsafe.Pointer, mode KeyboardMode) {
	C.gtk_layer_set_keyboard_mode((*C.GtkWindow)(window), C.GtkLayerShellKeyboardMode(mode))
}

// CenterOverlay turns window into an unanchored overlay surface that takes
// the keyboard. With no anchors the compositor centers it on the output.
// It returns false, leaving the window untouched, when the protocol is
// unavailable.
func CenterOverlay(window unsafe.Pointer, namespace string) bool {
	if !IsSupported() {
		return false
	}
	InitForWindow(window)
	SetNamespace(window, namespace)
	SetLayer(window, LayerOverlay)
	SetKeyboardMode(window, KeyboardModeExclusive)
	SetExclusiveZone(window, 0)
	return true
}
