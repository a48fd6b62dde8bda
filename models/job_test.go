package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalText_FixedLabelOrder(t *testing.T) {
	job := &Job{
		JobName:               "Riverside Plaza",
		JobType:               "Roofing",
		Description:           "Re-roof of the east wing",
		StructuralDetails:     "Steel deck",
		StructuralInformation: "Two storeys",
		AdditionalInformation: "Night work only",
	}
	expected := strings.Join([]string{
		"Job Name: Riverside Plaza",
		"Description: Re-roof of the east wing",
		"Structural Details: Steel deck",
		"Structural Information: Two storeys",
		"Additional Information: Night work only",
		"Job Type: Roofing",
	}, "\n")
	if got := job.CanonicalText(); got != expected {
		t.Fatalf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestCanonicalText_OmitsEmptyFields(t *testing.T) {
	job := &Job{JobName: "Riverside Plaza", JobType: "Roofing"}
	expected := "Job Name: Riverside Plaza\nJob Type: Roofing"
	if got := job.CanonicalText(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestTextHash_TracksContent(t *testing.T) {
	a := &Job{JobName: "Riverside Plaza"}
	b := &Job{JobName: "Riverside Plaza"}
	if a.TextHash() != b.TextHash() {
		t.Fatal("identical content must hash identically")
	}
	b.Description = "changed"
	if a.TextHash() == b.TextHash() {
		t.Fatal("changed content must change the hash")
	}
	if len(a.TextHash()) != 64 {
		t.Fatalf("expected a sha-256 hex digest, got %q", a.TextHash())
	}
}

func TestCanonicalJobPair_OrderIndependent(t *testing.T) {
	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")

	x1, y1 := CanonicalJobPair(a, b)
	x2, y2 := CanonicalJobPair(b, a)
	if x1 != x2 || y1 != y2 {
		t.Fatalf("expected the same canonical pair for both argument orders, got (%s,%s) and (%s,%s)", x1, y1, x2, y2)
	}
	if x1 != a || y1 != b {
		t.Fatalf("expected the smaller id first, got (%s,%s)", x1, y1)
	}
}

func TestIsConfirmedDifferent_OrderIndependent(t *testing.T) {
	a := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	b := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	c := uuid.MustParse("cccccccc-0000-0000-0000-000000000000")

	pairs := map[string]struct{}{
		a.String() + "|" + b.String(): {},
	}
	if !IsConfirmedDifferent(pairs, a, b) || !IsConfirmedDifferent(pairs, b, a) {
		t.Fatal("expected the confirmed pair to match regardless of argument order")
	}
	if IsConfirmedDifferent(pairs, a, c) {
		t.Fatal("unrelated pair must not match")
	}
}
