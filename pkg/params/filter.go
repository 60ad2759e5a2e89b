package params

// EventType classifies an entry within a parameter event.
type EventType uint8

const (
	EventTypeNew EventType = iota
	EventTypeChanged
	EventTypeDeleted
)

// FilteredParameter is one event entry selected by FilterEvent.
type FilteredParameter struct {
	Type      EventType
	Parameter Parameter
}

// FilterEvent selects the entries of an event matching any of the given
// parameter names and any of the given event types. Entries are returned
// grouped by event type, new before changed before deleted, preserving
// the in-event order within each group.
func FilterEvent(ev *ParameterEvent, names []string, types []EventType) []FilteredParameter {
	nameSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		nameSet[n] = struct{}{}
	}

	var out []FilteredParameter
	appendMatches := func(entries []Parameter, et EventType) {
		for _, p := range entries {
			if _, ok := nameSet[p.Name]; ok {
				out = append(out, FilteredParameter{Type: et, Parameter: p})
			}
		}
	}

	for _, et := range types {
		switch et {
		case EventTypeNew:
			appendMatches(ev.NewParameters, EventTypeNew)
		case EventTypeChanged:
			appendMatches(ev.ChangedParameters, EventTypeChanged)
		case EventTypeDeleted:
			appendMatches(ev.DeletedParameters, EventTypeDeleted)
		}
	}
	return out
}

// matchParameter extracts the most recent new-or-changed value a given
// node's event carries for a parameter. The node name is compared
// exactly; callers pass fully-qualified names.
func matchParameter(ev *ParameterEvent, parameterName, nodeName string) (Parameter, bool) {
	if ev.Node != nodeName {
		return Parameter{}, false
	}
	matches := FilterEvent(ev, []string{parameterName}, []EventType{EventTypeNew, EventTypeChanged})
	if len(matches) == 0 {
		return Parameter{}, false
	}
	return matches[len(matches)-1].Parameter, true
}
