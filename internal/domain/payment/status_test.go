package payment

import (
	"testing"

	"github.com/capmatchph/capital-match-api/internal/httperr"
)

func TestCanComplete(t *testing.T) {
	cases := []struct {
		name     string
		current  Status
		outcome  Status
		wantKind httperr.Kind
	}{
		{"pending to succeeded", StatusPending, StatusSucceeded, ""},
		{"pending to failed", StatusPending, StatusFailed, ""},
		{"succeeded is terminal", StatusSucceeded, StatusSucceeded, httperr.KindInvalidTransition},
		{"succeeded cannot fail", StatusSucceeded, StatusFailed, httperr.KindInvalidTransition},
		{"failed is terminal", StatusFailed, StatusSucceeded, httperr.KindInvalidTransition},
		{"outcome must be terminal", StatusPending, StatusPending, httperr.KindValidation},
		{"unknown outcome", StatusPending, Status("REFUNDED"), httperr.KindValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanComplete(tc.current, tc.outcome)

			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("expected transition to be allowed, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %s error, got nil", tc.wantKind)
			}
			if !httperr.IsKind(err, tc.wantKind) {
				t.Fatalf("expected kind %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Fatal("PENDING must not be terminal")
	}
	if !StatusSucceeded.Terminal() || !StatusFailed.Terminal() {
		t.Fatal("SUCCEEDED and FAILED must be terminal")
	}
}
