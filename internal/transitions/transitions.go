// Package transitions schedules dated parameter overrides against a
// simulation configuration. Every operation returns a new configuration and
// leaves its input untouched; a rejected operation mutates nothing.
package transitions

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"projection-engine/internal/model"
)

// Validate checks t against cfg as if it were about to be added.
func Validate(cfg model.SimulationConfiguration, t model.ParameterTransition) error {
	return validate(cfg, t, "")
}

// validate checks t, ignoring an existing transition with id skip.
func validate(cfg model.SimulationConfiguration, t model.ParameterTransition, skip string) error {
	if t.EffectiveDate.IsZero() {
		return &model.ValidationError{Code: model.CodeInvalidDate, Field: "effective_date", Message: "effective date is required"}
	}
	start := cfg.BaseParameters.Horizon.StartDate
	if !t.EffectiveDate.After(start) {
		return &model.ValidationError{
			Code:    model.CodeInvalidDate,
			Field:   "effective_date",
			Message: fmt.Sprintf("%s is not after the simulation start %s", t.EffectiveDate, start),
		}
	}
	if err := t.Changes.Validate(); err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) && vErr.Field != "" && vErr.Code != model.CodeEmptyChanges {
			return &model.ValidationError{Code: vErr.Code, Field: "changes." + vErr.Field, Message: vErr.Message}
		}
		return err
	}
	if t.ID == "" {
		return nil
	}
	for _, existing := range cfg.Transitions {
		if existing.ID == t.ID && existing.ID != skip {
			return &model.ValidationError{
				Code:    model.CodeDuplicateID,
				Field:   "id",
				Message: fmt.Sprintf("transition %q already exists", t.ID),
			}
		}
	}
	return nil
}

// ValidateConfiguration checks the base parameters and the whole
// transition set, including id uniqueness.
func ValidateConfiguration(cfg model.SimulationConfiguration) error {
	if err := cfg.BaseParameters.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(cfg.Transitions))
	for i, t := range cfg.Transitions {
		if t.ID == "" {
			return &model.ValidationError{Code: model.CodeInvalidValue, Field: fmt.Sprintf("transitions[%d].id", i), Message: "transition id is required"}
		}
		if seen[t.ID] {
			return &model.ValidationError{Code: model.CodeDuplicateID, Field: fmt.Sprintf("transitions[%d].id", i), Message: fmt.Sprintf("transition %q appears twice", t.ID)}
		}
		seen[t.ID] = true
		if err := validate(model.SimulationConfiguration{BaseParameters: cfg.BaseParameters}, t, ""); err != nil {
			return fmt.Errorf("transition %q: %w", t.ID, err)
		}
	}
	return nil
}

// Apply adds t to cfg. A missing id is generated. The transition lands after
// every existing transition on or before its date.
func Apply(cfg model.SimulationConfiguration, t model.ParameterTransition) (model.SimulationConfiguration, error) {
	if err := Validate(cfg, t); err != nil {
		return cfg, err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	out := cfg.Clone()
	out.Transitions = insert(Ordered(out.Transitions), t)
	return out, nil
}

// Update replaces the transition with t.ID. The full set is revalidated; a
// changed transition re-enters the order as the newest one for its date.
func Update(cfg model.SimulationConfiguration, t model.ParameterTransition) (model.SimulationConfiguration, error) {
	idx := indexOf(cfg.Transitions, t.ID)
	if idx < 0 {
		return cfg, notFound(t.ID)
	}
	if err := validate(cfg, t, t.ID); err != nil {
		return cfg, err
	}
	out := cfg.Clone()
	if reflect.DeepEqual(cfg.Transitions[idx], t) {
		return out, nil
	}
	rest := append(out.Transitions[:idx:idx], out.Transitions[idx+1:]...)
	out.Transitions = insert(Ordered(rest), t)
	if err := ValidateConfiguration(out); err != nil {
		return cfg, err
	}
	return out, nil
}

// Remove drops the transition with id.
func Remove(cfg model.SimulationConfiguration, id string) (model.SimulationConfiguration, error) {
	idx := indexOf(cfg.Transitions, id)
	if idx < 0 {
		return cfg, notFound(id)
	}
	out := cfg.Clone()
	out.Transitions = append(out.Transitions[:idx:idx], out.Transitions[idx+1:]...)
	return out, nil
}

// Ordered returns ts sorted by effective date. Same-date transitions keep
// their relative order.
func Ordered(ts []model.ParameterTransition) []model.ParameterTransition {
	out := append([]model.ParameterTransition(nil), ts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}

func insert(sorted []model.ParameterTransition, t model.ParameterTransition) []model.ParameterTransition {
	pos := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].EffectiveDate.After(t.EffectiveDate)
	})
	sorted = append(sorted, model.ParameterTransition{})
	copy(sorted[pos+1:], sorted[pos:])
	sorted[pos] = t
	return sorted
}

func indexOf(ts []model.ParameterTransition, id string) int {
	for i, t := range ts {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return &model.ValidationError{Code: model.CodeNotFound, Field: "id", Message: fmt.Sprintf("no transition with id %q", id)}
}

// DecodeTransition parses a transition, rejecting unknown keys anywhere in it.
func DecodeTransition(data []byte) (model.ParameterTransition, error) {
	var t model.ParameterTransition
	if err := decodeStrict(data, &t); err != nil {
		return model.ParameterTransition{}, err
	}
	return t, nil
}

// DecodeChanges parses a change set, rejecting unrecognised parameter keys.
func DecodeChanges(data []byte) (model.ParameterChanges, error) {
	var c model.ParameterChanges
	if err := decodeStrict(data, &c); err != nil {
		return model.ParameterChanges{}, err
	}
	return c, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			return &model.ValidationError{Code: model.CodeUnknownParameter, Message: err.Error()}
		}
		return &model.ValidationError{Code: model.CodeInvalidValue, Message: err.Error()}
	}
	return nil
}
