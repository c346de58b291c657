// Package services models the set of predefined and custom services a
// provider offers. List is a value type: every operation returns a new List
// and leaves the receiver untouched.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

// KeyEmpty is the error key used when the merged list has no entries.
const KeyEmpty = "services"

// ErrIndex reports an index outside the addressed subset.
var ErrIndex = errors.New("service index out of range")

// ErrField reports an unknown service field name.
var ErrField = errors.New("unknown service field")

// List tracks predefined and custom entries separately. Errors is keyed by
// Key(isCustom, index).
type List struct {
	Predefined []profile.ServiceEntry
	Custom     []profile.ServiceEntry
	Errors     map[string]profile.Errors
	Saved      bool
}

// Key returns the error-map key of an entry, e.g. "predefined_0" or "custom_2".
func Key(isCustom bool, index int) string {
	if isCustom {
		return fmt.Sprintf("custom_%d", index)
	}
	return fmt.Sprintf("predefined_%d", index)
}

// FromEntries splits a snapshot list into its predefined and custom parts.
// A list hydrated from the server counts as saved.
func FromEntries(entries []profile.ServiceEntry) List {
	l := List{Errors: map[string]profile.Errors{}, Saved: len(entries) > 0}
	for _, e := range entries {
		if e.IsCustom {
			l.Custom = append(l.Custom, e)
		} else {
			l.Predefined = append(l.Predefined, e)
		}
	}
	return l
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	out := List{
		Predefined: append([]profile.ServiceEntry(nil), l.Predefined...),
		Custom:     append([]profile.ServiceEntry(nil), l.Custom...),
		Errors:     make(map[string]profile.Errors, len(l.Errors)),
		Saved:      l.Saved,
	}
	for k, v := range l.Errors {
		out.Errors[k] = v.Clone()
	}
	return out
}

// Merged exposes the entries predefined first, then custom.
func (l List) Merged() []profile.ServiceEntry {
	out := make([]profile.ServiceEntry, 0, len(l.Predefined)+len(l.Custom))
	out = append(out, l.Predefined...)
	return append(out, l.Custom...)
}

// Len returns the number of entries in the merged list.
func (l List) Len() int {
	return len(l.Predefined) + len(l.Custom)
}

// HasPredefined reports whether a predefined entry with the given name exists.
func (l List) HasPredefined(name string) bool {
	for _, e := range l.Predefined {
		if strings.TrimSpace(e.Name) == strings.TrimSpace(name) {
			return true
		}
	}
	return false
}

// AddPredefined appends a predefined service awaiting price details. A name
// already present in the predefined subset is rejected with an error wrapping
// profile.ErrConflict and the list is returned unchanged.
func (l List) AddPredefined(entry profile.ServiceEntry) (List, error) {
	if l.HasPredefined(entry.Name) {
		return l.Clone(), fmt.Errorf("%w: %s is already added", profile.ErrConflict, entry.Name)
	}
	out := l.Clone()
	out.Predefined = append(out.Predefined, profile.ServiceEntry{
		Name:     entry.Name,
		Category: entry.Category,
	})
	out.Saved = false
	return out, nil
}

// AddCustom appends a blank custom entry tagged with category.
func (l List) AddCustom(category string) List {
	out := l.Clone()
	out.Custom = append(out.Custom, profile.ServiceEntry{Category: category, IsCustom: true})
	out.Saved = false
	return out
}

// Update replaces one field of one entry and re-validates that entry.
func (l List) Update(index int, field, value string, isCustom bool) (List, error) {
	out := l.Clone()
	subset := out.subset(isCustom)
	if index < 0 || index >= len(*subset) {
		return out, fmt.Errorf("%w: %s", ErrIndex, Key(isCustom, index))
	}
	e := (*subset)[index]
	switch field {
	case validate.FieldName:
		e.Name = value
	case validate.FieldCategory:
		e.Category = value
	case validate.FieldPrice:
		e.Price = value
	case validate.FieldPriceType:
		e.PriceType = value
	case validate.FieldDescription:
		e.Description = value
	default:
		return out, fmt.Errorf("%w: %q", ErrField, field)
	}
	(*subset)[index] = e
	out.setErrors(Key(isCustom, index), validate.Service(e))
	out.Saved = false
	return out, nil
}

// Remove deletes an entry and returns it. Issuing a remote delete for a
// persisted entry is the caller's job.
func (l List) Remove(index int, isCustom bool) (List, profile.ServiceEntry, error) {
	out := l.Clone()
	subset := out.subset(isCustom)
	if index < 0 || index >= len(*subset) {
		return out, profile.ServiceEntry{}, fmt.Errorf("%w: %s", ErrIndex, Key(isCustom, index))
	}
	removed := (*subset)[index]
	*subset = append((*subset)[:index], (*subset)[index+1:]...)
	out.shiftErrors(isCustom, index, -1)
	out.Saved = false
	return out, removed, nil
}

// Insert puts entry back at index. It is the inverse of Remove.
func (l List) Insert(index int, isCustom bool, entry profile.ServiceEntry) List {
	out := l.Clone()
	subset := out.subset(isCustom)
	index = max(0, min(index, len(*subset)))
	entry.IsCustom = isCustom
	out.shiftErrors(isCustom, index, 1)
	*subset = append((*subset)[:index], append([]profile.ServiceEntry{entry}, (*subset)[index:]...)...)
	out.Saved = false
	return out
}

// Validate runs the service validator over every entry.
func (l List) Validate() map[string]profile.Errors {
	errs := map[string]profile.Errors{}
	for i, e := range l.Predefined {
		if fe := validate.Service(e); len(fe) > 0 {
			errs[Key(false, i)] = fe
		}
	}
	for i, e := range l.Custom {
		if fe := validate.Service(e); len(fe) > 0 {
			errs[Key(true, i)] = fe
		}
	}
	if l.Len() == 0 {
		errs[KeyEmpty] = profile.Errors{KeyEmpty: "Add at least one service"}
	}
	return errs
}

// Commit validates every entry. On success it marks the list saved and returns
// the merged entries; otherwise it stores and returns the error map and the
// list stays unsaved.
func (l List) Commit() (List, []profile.ServiceEntry, map[string]profile.Errors) {
	out := l.Clone()
	errs := out.Validate()
	out.Errors = errs
	if len(errs) > 0 {
		out.Saved = false
		return out, nil, errs
	}
	out.Saved = true
	return out, out.Merged(), nil
}

func (l *List) subset(isCustom bool) *[]profile.ServiceEntry {
	if isCustom {
		return &l.Custom
	}
	return &l.Predefined
}

func (l *List) setErrors(key string, errs profile.Errors) {
	if l.Errors == nil {
		l.Errors = map[string]profile.Errors{}
	}
	if len(errs) == 0 {
		delete(l.Errors, key)
		return
	}
	l.Errors[key] = errs
}

// shiftErrors moves error entries of one subset after a removal (delta -1 at
// index) or insertion (delta +1 at index).
func (l *List) shiftErrors(isCustom bool, index, delta int) {
	n := len(*l.subset(isCustom))
	shifted := make(map[string]profile.Errors, len(l.Errors))
	for k, v := range l.Errors {
		shifted[k] = v
	}
	for i := 0; i <= n; i++ {
		delete(shifted, Key(isCustom, i))
	}
	for i := 0; i <= n; i++ {
		v, ok := l.Errors[Key(isCustom, i)]
		if !ok {
			continue
		}
		switch {
		case i < index:
			shifted[Key(isCustom, i)] = v
		case delta < 0 && i == index:
		default:
			shifted[Key(isCustom, i+delta)] = v
		}
	}
	delete(shifted, KeyEmpty)
	l.Errors = shifted
}
