package policy

import "testing"

func TestPermitSafeMethodsAllowEveryone(t *testing.T) {
	callers := map[string]*Caller{
		"anonymous": nil,
		"regular":   {UserID: 1, Email: "user@test.com", Staff: false},
		"staff":     {UserID: 2, Email: "admin@test.com", Staff: true},
	}
	for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
		for name, caller := range callers {
			if !Permit(method, caller) {
				t.Errorf("Permit(%q, %s) = false, want true", method, name)
			}
		}
	}
}

func TestPermitUnsafeMethodsRequireStaff(t *testing.T) {
	cases := []struct {
		name   string
		caller *Caller
		want   bool
	}{
		{"anonymous", nil, false},
		{"regular user", &Caller{UserID: 1, Staff: false}, false},
		{"staff", &Caller{UserID: 2, Staff: true}, true},
	}
	for _, method := range []string{"POST", "PUT", "PATCH", "DELETE"} {
		for _, tc := range cases {
			if got := Permit(method, tc.caller); got != tc.want {
				t.Errorf("Permit(%q, %s) = %v, want %v", method, tc.name, got, tc.want)
			}
		}
	}
}

func TestPermitUnknownMethodTreatedAsUnsafe(t *testing.T) {
	// Anything outside the safe set needs staff, even methods we never route.
	if Permit("PROPFIND", nil) {
		t.Error("Permit(PROPFIND, anonymous) = true, want false")
	}
	if !Permit("PROPFIND", &Caller{UserID: 3, Staff: true}) {
		t.Error("Permit(PROPFIND, staff) = false, want true")
	}
}

func TestPermitIsStable(t *testing.T) {
	// Pure function: repeated evaluation with identical inputs never changes.
	caller := &Caller{UserID: 9, Staff: false}
	first := Permit("POST", caller)
	for i := 0; i < 100; i++ {
		if Permit("POST", caller) != first {
			t.Fatal("Permit returned different results for identical inputs")
		}
	}
}
