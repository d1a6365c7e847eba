package suggest

import "testing"

func TestSuggest_FirstOverlapInOrder(t *testing.T) {
	candidates := []string{"createdAt", "updatedAt", "created_at"}
	if got := Suggest("created", candidates); got != "createdAt" {
		t.Errorf("Suggest = %q, want first overlapping candidate", got)
	}
}

func TestSuggest_EitherDirection(t *testing.T) {
	// Candidate contained in the hallucinated name.
	if got := Suggest("userEmailAddress", []string{"email"}); got != "email" {
		t.Errorf("containment should work both ways, got %q", got)
	}
	// Case-insensitive.
	if got := Suggest("USERS", []string{"users"}); got != "users" {
		t.Errorf("case-insensitive overlap failed, got %q", got)
	}
}

func TestSuggest_NoOverlap(t *testing.T) {
	if got := Suggest("bogus", []string{"id", "name"}); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	candidates := []string{"profileId", "profileName", "profile"}
	first := Suggest("profile", candidates)
	for i := 0; i < 10; i++ {
		if got := Suggest("profile", candidates); got != first {
			t.Fatalf("suggestion changed between calls: %q then %q", first, got)
		}
	}
	if first != "profileId" {
		t.Errorf("insertion order not respected: %q", first)
	}
}
