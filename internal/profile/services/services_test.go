package services

import (
	"errors"
	"testing"

	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

func mustUpdate(t *testing.T, l List, index int, field, value string, isCustom bool) List {
	t.Helper()
	out, err := l.Update(index, field, value, isCustom)
	if err != nil {
		t.Fatalf("update %s=%s: %v", field, value, err)
	}
	return out
}

func TestCommitBlankPredefinedEntry(t *testing.T) {
	l := FromEntries([]profile.ServiceEntry{{Name: "Cleaning", Category: "Home"}})

	out, merged, errs := l.Commit()

	if merged != nil {
		t.Fatalf("expected no merged list, got %v", merged)
	}
	if out.Saved {
		t.Fatal("expected list not saved")
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error entry, got %v", errs)
	}
	got := errs["predefined_0"]
	if got[validate.FieldPrice] != "Required" || got[validate.FieldPriceType] != "Required" {
		t.Fatalf("unexpected errors: %v", got)
	}
	if len(got) != 2 {
		t.Fatalf("expected only price and priceType errors, got %v", got)
	}
}

func TestCommitEmptyListFails(t *testing.T) {
	_, _, errs := List{}.Commit()
	if _, ok := errs[KeyEmpty]; !ok {
		t.Fatalf("expected %s error, got %v", KeyEmpty, errs)
	}
}

func TestCommitSucceedsIffAllEntriesValid(t *testing.T) {
	valid := profile.ServiceEntry{Name: "Plumbing", Category: "Home", Price: "150", PriceType: profile.PriceTypeHourly}
	validCustom := profile.ServiceEntry{
		Name: "Garden", Category: "Outdoor", Price: "300", PriceType: profile.PriceTypeOnceOff,
		Description: "Full garden tidy", IsCustom: true,
	}
	noDesc := validCustom
	noDesc.Description = ""

	tests := []struct {
		name    string
		entries []profile.ServiceEntry
		ok      bool
	}{
		{"single valid", []profile.ServiceEntry{valid}, true},
		{"valid mix", []profile.ServiceEntry{valid, validCustom}, true},
		{"custom without description", []profile.ServiceEntry{valid, noDesc}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, merged, errs := FromEntries(tt.entries).Commit()
			if tt.ok != (len(errs) == 0) {
				t.Fatalf("expected ok=%v, got errors %v", tt.ok, errs)
			}
			if out.Saved != tt.ok {
				t.Fatalf("expected saved=%v", tt.ok)
			}
			if tt.ok && len(merged) != len(tt.entries) {
				t.Fatalf("expected %d merged entries, got %d", len(tt.entries), len(merged))
			}
		})
	}
}

func TestAddPredefinedDuplicateIsConflict(t *testing.T) {
	l, err := List{}.AddPredefined(profile.ServiceEntry{Name: "Cleaning", Category: "Home"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := l.AddPredefined(profile.ServiceEntry{Name: "Cleaning", Category: "Home"})
	if !errors.Is(err, profile.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if again.Len() != l.Len() {
		t.Fatalf("expected length %d, got %d", l.Len(), again.Len())
	}
}

func TestAddPredefinedLeavesPricingBlank(t *testing.T) {
	l, _ := List{}.AddPredefined(profile.ServiceEntry{ID: "catalog-1", Name: "Cleaning", Category: "Home", Price: "9"})
	e := l.Predefined[0]
	if e.ID != "" || e.Price != "" || e.PriceType != "" || e.Description != "" {
		t.Fatalf("expected blank pending fields, got %+v", e)
	}
}

func TestMergedOrdersPredefinedFirst(t *testing.T) {
	l := List{}.AddCustom("Beauty")
	l, _ = l.AddPredefined(profile.ServiceEntry{Name: "Cleaning", Category: "Home"})
	merged := l.Merged()
	if len(merged) != 2 || merged[0].Name != "Cleaning" || !merged[1].IsCustom {
		t.Fatalf("unexpected order: %+v", merged)
	}
}

func TestUpdateStoresErrorsPerEntry(t *testing.T) {
	l := List{}.AddCustom("Beauty")
	l = mustUpdate(t, l, 0, validate.FieldName, "Nails", true)
	if l.Errors["custom_0"][validate.FieldDescription] != "Required" {
		t.Fatalf("expected description error, got %v", l.Errors)
	}
	l = mustUpdate(t, l, 0, validate.FieldPrice, "200", true)
	l = mustUpdate(t, l, 0, validate.FieldPriceType, profile.PriceTypeOnceOff, true)
	l = mustUpdate(t, l, 0, validate.FieldDescription, "Gel nails", true)
	if _, ok := l.Errors["custom_0"]; ok {
		t.Fatalf("expected errors cleared, got %v", l.Errors)
	}
}

func TestUpdateRejectsBadIndexAndField(t *testing.T) {
	l := List{}.AddCustom("Beauty")
	if _, err := l.Update(3, validate.FieldName, "x", true); !errors.Is(err, ErrIndex) {
		t.Fatalf("expected ErrIndex, got %v", err)
	}
	if _, err := l.Update(0, "colour", "x", true); !errors.Is(err, ErrField) {
		t.Fatalf("expected ErrField, got %v", err)
	}
}

func TestRemoveAndInsertAreInverse(t *testing.T) {
	l := FromEntries([]profile.ServiceEntry{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	})
	l = mustUpdate(t, l, 2, validate.FieldPrice, "", false)

	removed, entry, err := l.Remove(1, false)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if entry.ID != "b" || removed.Len() != 2 {
		t.Fatalf("unexpected removal: %+v len=%d", entry, removed.Len())
	}
	if _, ok := removed.Errors["predefined_1"]; !ok {
		t.Fatalf("expected error of C to shift to index 1, got %v", removed.Errors)
	}

	restored := removed.Insert(1, false, entry)
	if restored.Predefined[1].ID != "b" || restored.Predefined[2].ID != "c" {
		t.Fatalf("unexpected order after insert: %+v", restored.Predefined)
	}
	if _, ok := restored.Errors["predefined_2"]; !ok {
		t.Fatalf("expected error of C back at index 2, got %v", restored.Errors)
	}
	if len(l.Predefined) != 3 {
		t.Fatal("original list was mutated")
	}
}

func TestFromEntriesSplitsBySubset(t *testing.T) {
	l := FromEntries([]profile.ServiceEntry{{Name: "A"}, {Name: "B", IsCustom: true}, {Name: "C"}})
	if len(l.Predefined) != 2 || len(l.Custom) != 1 {
		t.Fatalf("unexpected split: %d/%d", len(l.Predefined), len(l.Custom))
	}
	if !l.Saved {
		t.Fatal("expected hydrated list to be saved")
	}
}
