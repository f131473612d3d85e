// Package normalize converts untrusted request payloads into the canonical
// forms the rest of the service operates on. All functions are pure: no I/O,
// no side effects.
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fitspace/avatar-service/internal/models"
)

// DefaultAvatarName is used when a payload omits the name or supplies a
// blank one.
const DefaultAvatarName = "Untitled Avatar"

// ValidationError describes malformed input the caller can fix. The handler
// layer maps it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Errorf builds a *ValidationError from a format string.
func Errorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Measurements validates a measurement section decoded from JSON and returns
// it as a map of string keys to float64 values. A nil section yields an empty
// map. Normalizing the function's own output returns an equal map.
func Measurements(section any, sectionName string) (map[string]float64, error) {
	normalized := make(map[string]float64)

	switch m := section.(type) {
	case nil:
		return normalized, nil
	case map[string]float64:
		// Already canonical.
		for key, value := range m {
			normalized[key] = value
		}
		return normalized, nil
	case map[string]any:
		for key, value := range m {
			number, ok := asNumber(value)
			if !ok {
				return nil, Errorf("Measurement '%s' in %s must be a number.", key, sectionName)
			}
			normalized[key] = number
		}
		return normalized, nil
	default:
		return nil, Errorf("%s must be an object of numeric values.", sectionName)
	}
}

// MorphTargets validates a morph-target payload and returns the canonical
// sorted form. Accepted shapes: nil, an object of id to value, or a list
// whose entries are either {"id": ..., "value": ...} objects or two-element
// [id, value] pairs. Duplicate ids collapse to the last occurrence; the
// result is sorted ascending by id.
func MorphTargets(payload any) ([]models.MorphTarget, error) {
	items, err := morphItems(payload)
	if err != nil {
		return nil, err
	}

	collapsed := make(map[string]float64, len(items))
	for _, item := range items {
		collapsed[item.ID] = item.Value
	}

	targets := make([]models.MorphTarget, 0, len(collapsed))
	for id, value := range collapsed {
		targets = append(targets, models.MorphTarget{ID: id, Value: value})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })
	return targets, nil
}

// morphItems flattens the accepted payload shapes into (id, value) pairs in
// input order, validating each entry.
func morphItems(payload any) ([]models.MorphTarget, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		items := make([]models.MorphTarget, 0, len(p))
		for id, value := range p {
			number, ok := asNumber(value)
			if !ok {
				return nil, Errorf("Morph target '%s' value must be numeric.", id)
			}
			items = append(items, models.MorphTarget{ID: id, Value: number})
		}
		return items, nil
	case []any:
		items := make([]models.MorphTarget, 0, len(p))
		for _, entry := range p {
			item, err := morphItem(entry)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, Errorf("Morph targets must be provided as an object or list of objects.")
	}
}

func morphItem(entry any) (models.MorphTarget, error) {
	var rawID, rawValue any

	switch e := entry.(type) {
	case map[string]any:
		rawID = e["id"]
		rawValue = e["value"]
	case []any:
		if len(e) != 2 {
			return models.MorphTarget{}, Errorf("Morph targets must be objects with 'id' and 'value'.")
		}
		rawID, rawValue = e[0], e[1]
	default:
		return models.MorphTarget{}, Errorf("Morph targets must be objects with 'id' and 'value'.")
	}

	if rawID == nil {
		return models.MorphTarget{}, Errorf("Morph targets require an 'id'.")
	}
	id := coerceID(rawID)

	value, ok := asNumber(rawValue)
	if !ok {
		return models.MorphTarget{}, Errorf("Morph target '%s' value must be numeric.", id)
	}
	return models.MorphTarget{ID: id, Value: value}, nil
}

// Name validates an avatar name. Absent or blank names map to
// DefaultAvatarName; anything present must be a string.
func Name(raw any) (string, error) {
	switch n := raw.(type) {
	case nil:
		return DefaultAvatarName, nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return DefaultAvatarName, nil
		}
		return trimmed, nil
	default:
		return "", Errorf("Avatar name must be a string.")
	}
}

// asNumber accepts the numeric types a decoded payload (or an internal
// caller) can carry. Integer and float inputs are indistinguishable
// downstream.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// coerceID renders a non-string morph id as a string, matching how numeric
// ids arrive when clients send [id, value] pairs.
func coerceID(raw any) string {
	switch id := raw.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
