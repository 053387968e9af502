package section

import "fmt"

// EventKind is the type of a resolved input event.
type EventKind int

const (
	EventNone EventKind = iota
	EventContinue
	EventSelectOption
	EventSubmit
	EventPageLeft
	EventPageRight
	EventJump
)

func (k EventKind) String() string {
	switch k {
	case EventContinue:
		return "continue"
	case EventSelectOption:
		return "select_option"
	case EventSubmit:
		return "submit"
	case EventPageLeft:
		return "page_left"
	case EventPageRight:
		return "page_right"
	case EventJump:
		return "jump"
	default:
		return "none"
	}
}

// Event is one already-debounced user action. Value holds the option
// number for EventSelectOption and the item index for EventJump.
type Event struct {
	Kind  EventKind
	Value int
}

func (e Event) String() string {
	switch e.Kind {
	case EventSelectOption, EventJump:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Value)
	default:
		return e.Kind.String()
	}
}

// NoEvent is the empty frame.
var NoEvent = Event{}

// Continue dismisses the instruction screen.
func Continue() Event { return Event{Kind: EventContinue} }

// SelectOption picks option n (1-based) for the current item.
func SelectOption(n int) Event { return Event{Kind: EventSelectOption, Value: n} }

// Submit confirms the end of the phase.
func Submit() Event { return Event{Kind: EventSubmit} }

// PageLeft scrolls the navigation strip back one window.
func PageLeft() Event { return Event{Kind: EventPageLeft} }

// PageRight scrolls the navigation strip forward one window.
func PageRight() Event { return Event{Kind: EventPageRight} }

// Jump shows the item at index.
func Jump(index int) Event { return Event{Kind: EventJump, Value: index} }
