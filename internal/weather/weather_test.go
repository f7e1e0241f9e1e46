package weather

import (
	"testing"
	"time"
)

func TestConditionLabel(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{0, "ensoleillé"},
		{1, "nuageux"},
		{3, "nuageux"},
		{45, "brouillard"},
		{48, "brouillard"},
		{51, "pluie"},
		{67, "pluie"},
		{71, "neige"},
		{77, "neige"},
		{80, "averses"},
		{82, "averses"},
		{85, "neige"},
		{95, "orage"},
		{99, "orage"},
		{40, "variable"},
	}
	for _, tc := range cases {
		if got := ConditionLabel(tc.code); got != tc.want {
			t.Errorf("ConditionLabel(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestFetchUsesCache(t *testing.T) {
	c := NewClient(48.8566, 2.3522)

	// Prime the cache by hand; Fetch must not hit the network while the
	// entry is fresh.
	c.cached = &Conditions{Temp: 18.5, Condition: "nuageux"}
	c.cachedAt = time.Now()

	got, err := c.Fetch()
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Temp != 18.5 || got.Condition != "nuageux" {
		t.Errorf("cached conditions not returned: %+v", got)
	}
}

func TestFetchBackoffServesStaleCache(t *testing.T) {
	c := NewClient(48.8566, 2.3522)

	c.cached = &Conditions{Temp: 12, Condition: "pluie"}
	c.cachedAt = time.Now().Add(-time.Hour) // stale
	c.lastFailAt = time.Now()
	c.failBackoff = 10 * time.Minute

	got, err := c.Fetch()
	if err != nil {
		t.Fatalf("Fetch during backoff with cache: %v", err)
	}
	if got.Temp != 12 {
		t.Errorf("stale cache not served: %+v", got)
	}
}

func TestFetchBackoffWithoutCacheFails(t *testing.T) {
	c := NewClient(48.8566, 2.3522)
	c.lastFailAt = time.Now()
	c.failBackoff = 10 * time.Minute

	if _, err := c.Fetch(); err == nil {
		t.Error("backoff without cache should error instead of calling the API")
	}
}
