package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "assignment:view", true},
		{"student", "submission:create", true},
		{"student", "submission:view-all", false},
		{"student", "assignment:edit", false},
		{"student", "deeplink:create", false},
		{"instructor", "assignment:edit", true},
		{"instructor", "submission:grade", true},
		{"instructor", "deeplink:create", true},
		{"admin", "assignment:edit", true},
		{"admin", "anything:at-all", true},
		{"", "assignment:view", false},
		{"visitor", "assignment:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "submission:grade", "assignment:view") {
		t.Fatal("student should match at least one permission")
	}
	if c.Any("student", "submission:grade", "assignment:edit") {
		t.Fatal("student matched permissions it does not hold")
	}
}

func TestWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"submission:*"}})
	if !c.Has("auditor", "submission:view-all") {
		t.Fatal("prefix wildcard did not match")
	}
	if c.Has("auditor", "assignment:view") {
		t.Fatal("prefix wildcard matched outside its prefix")
	}
}

func TestRequireMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Require("assignment:edit")(next)

	req := func(role string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/assignment/edit", nil)
		if role != "" {
			r = r.WithContext(WithRole(r.Context(), role))
		}
		return r
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req("instructor"))
	if w.Code != http.StatusNoContent {
		t.Fatalf("instructor: %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req("student"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("student: %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req(""))
	if w.Code != http.StatusForbidden {
		t.Fatalf("no role: %d, want 403", w.Code)
	}
}
