package script

import (
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/udisondev/pathgen/internal/movement"
)

// speaker is implemented by hosts that can broadcast chat.
type speaker interface {
	Say(text string)
}

// scriptGlobals lists the variables every event script can use.
var scriptGlobals = []string{"event_id", "departure", "name", "guid", "map_id", "position", "say", "log"}

// bindGlobals returns values for scriptGlobals bound to target.
func bindGlobals(eventID uint32, target movement.EventTarget, departure bool) map[string]any {
	return map[string]any{
		"event_id":  int64(eventID),
		"departure": departure,
		"name": &tengo.UserFunction{Name: "name", Value: func(...tengo.Object) (tengo.Object, error) {
			return &tengo.String{Value: target.Name()}, nil
		}},
		"guid": &tengo.UserFunction{Name: "guid", Value: func(...tengo.Object) (tengo.Object, error) {
			return &tengo.Int{Value: int64(target.GUID())}, nil
		}},
		"map_id": &tengo.UserFunction{Name: "map_id", Value: func(...tengo.Object) (tengo.Object, error) {
			return &tengo.Int{Value: int64(target.MapID())}, nil
		}},
		"position": &tengo.UserFunction{Name: "position", Value: func(...tengo.Object) (tengo.Object, error) {
			pos := target.Position()
			return &tengo.Array{Value: []tengo.Object{
				&tengo.Float{Value: pos.X()},
				&tengo.Float{Value: pos.Y()},
				&tengo.Float{Value: pos.Z()},
			}}, nil
		}},
		"say": &tengo.UserFunction{Name: "say", Value: func(args ...tengo.Object) (tengo.Object, error) {
			text := joinArgs(args)
			if s, ok := target.(speaker); ok {
				s.Say(text)
			} else {
				slog.Info("unit says", "unit", target.Name(), "text", text)
			}
			return tengo.UndefinedValue, nil
		}},
		"log": &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
			slog.Info("event script",
				"event", eventID,
				"unit", target.Name(),
				"text", joinArgs(args))
			return tengo.UndefinedValue, nil
		}},
	}
}

// placeholderGlobals declares scriptGlobals at compile time.
func placeholderGlobals() map[string]any {
	noop := func(name string) *tengo.UserFunction {
		return &tengo.UserFunction{Name: name, Value: func(...tengo.Object) (tengo.Object, error) {
			return tengo.UndefinedValue, nil
		}}
	}
	out := make(map[string]any, len(scriptGlobals))
	for _, name := range scriptGlobals {
		switch name {
		case "event_id":
			out[name] = int64(0)
		case "departure":
			out[name] = false
		default:
			out[name] = noop(name)
		}
	}
	return out
}

func joinArgs(args []tengo.Object) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, objectAsString(a))
	}
	return strings.Join(parts, " ")
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
