package board

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/whiteboard/pkg/errors"
)

// EventType names an input event.
type EventType string

// Input event types. Pointer events carry X and Y; "tool" carries Tool,
// "color" carries Color, "thickness" carries Value and "resize" carries
// Width and Height.
const (
	EventPointerDown  EventType = "pointerdown"
	EventPointerMove  EventType = "pointermove"
	EventPointerUp    EventType = "pointerup"
	EventPointerLeave EventType = "pointerleave"
	EventPointerOut   EventType = "pointerout"
	EventTool         EventType = "tool"
	EventColor        EventType = "color"
	EventThickness    EventType = "thickness"
	EventNextPage     EventType = "next"
	EventPrevPage     EventType = "prev"
	EventClear        EventType = "clear"
	EventResize       EventType = "resize"
)

// MaxSurfaceSide bounds the width and height a resize event may request.
const MaxSurfaceSide = 8192

// Event is one serialized input, as sent by a client or stored in a
// replay script.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	Tool   string    `json:"tool,omitempty"`
	Color  string    `json:"color,omitempty"`
	Value  int       `json:"value,omitempty"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

// Validate checks that the event is well formed. Unknown tool names are
// valid: selecting one makes pointer motion a no-op.
func (e Event) Validate() error {
	switch e.Type {
	case EventPointerDown, EventPointerMove, EventPointerUp, EventPointerLeave, EventPointerOut,
		EventTool, EventThickness, EventNextPage, EventPrevPage, EventClear:
		return nil
	case EventColor:
		if e.Color == "" {
			return errors.New(errors.ErrCodeInvalidInput, "color event without a color")
		}
		return nil
	case EventResize:
		if e.Width <= 0 || e.Height <= 0 || e.Width > MaxSurfaceSide || e.Height > MaxSurfaceSide {
			return errors.New(errors.ErrCodeInvalidInput, "resize to %dx%d out of range (1..%d)", e.Width, e.Height, MaxSurfaceSide)
		}
		return nil
	case "":
		return errors.New(errors.ErrCodeInvalidInput, "event without a type")
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown event type: %s", e.Type)
	}
}

// sizer is a Container whose size can be set from input.
type sizer interface {
	SetSize(width, height int)
}

// Apply validates e and dispatches it to the matching session method.
// Thickness values are clamped to the control range. A resize event updates
// the container when it is settable (such as a Viewport) before resizing.
func (s *Session) Apply(e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	switch e.Type {
	case EventPointerDown:
		s.OnPointerDown(e.X, e.Y)
	case EventPointerMove:
		s.OnPointerMove(e.X, e.Y)
	case EventPointerUp:
		s.OnPointerUp()
	case EventPointerLeave:
		s.OnPointerLeave()
	case EventPointerOut:
		s.OnPointerOut()
	case EventTool:
		s.SelectTool(ParseTool(e.Tool))
	case EventColor:
		s.SelectColor(e.Color)
	case EventThickness:
		s.SetThickness(ClampThickness(e.Value))
	case EventNextPage:
		s.NextPage()
	case EventPrevPage:
		s.PrevPage()
	case EventClear:
		s.Clear()
	case EventResize:
		if c, ok := s.container.(sizer); ok {
			c.SetSize(e.Width, e.Height)
		}
		s.Resize()
	}
	return nil
}

// ApplyAll applies events in order and stops at the first invalid one.
// Events before it stay applied. The returned error keeps the code of the
// failure and its message names the event's position.
func (s *Session) ApplyAll(events []Event) error {
	for i, e := range events {
		if err := s.Apply(e); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "event %d: %s", i, errors.UserMessage(err))
		}
	}
	return nil
}

// ReadEvents decodes a JSON array of events.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode events")
	}
	return events, nil
}
