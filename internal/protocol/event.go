package protocol

// EventKind is the stable script-visible name of a host-to-script event.
type EventKind string

const (
	EventSelectionChanged EventKind = "selectionChanged"
	EventDoubleClicked    EventKind = "doubleClicked"
	EventMenuAction       EventKind = "menuAction"
	EventMenuDismissed    EventKind = "menuDismissed"
	EventDragCompleted    EventKind = "dragCompleted"
	EventDropReceived     EventKind = "dropReceived"
	EventPreviewClosed    EventKind = "previewClosed"
	EventWindowClosed     EventKind = "windowClosed"
	EventBridgeError      EventKind = "bridgeError"
	EventResult           EventKind = "__result"
)

// DeliveryMode selects how an event re-enters the script engine.
type DeliveryMode string

const (
	DeliverDirect DeliveryMode = "direct"
	DeliverPolled DeliveryMode = "polled"
)

// DefaultMode returns the delivery mode used when a registration does not
// specify one. Menu and drag callbacks fire from inside native tracking
// loops where re-entering script is unsafe, so they are polled.
func (k EventKind) DefaultMode() DeliveryMode {
	switch k {
	case EventMenuAction, EventMenuDismissed, EventDragCompleted:
		return DeliverPolled
	default:
		return DeliverDirect
	}
}

// ParseDeliveryMode maps script input to a mode, falling back to def.
func ParseDeliveryMode(s string, def DeliveryMode) DeliveryMode {
	switch DeliveryMode(s) {
	case DeliverDirect, DeliverPolled:
		return DeliveryMode(s)
	default:
		return def
	}
}

// Drag operations reported by dragCompleted.
const (
	DragOperationNone = "none"
	DragOperationCopy = "copy"
	DragOperationMove = "move"
	DragOperationLink = "link"
)

// ValidDragOperation reports whether op is one of the known operations.
func ValidDragOperation(op string) bool {
	switch op {
	case DragOperationNone, DragOperationCopy, DragOperationMove, DragOperationLink:
		return true
	default:
		return false
	}
}
