package world

import (
	"math/rand"
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sciences", "sciences"},
		{"École d'Ingénierie", "ecole-d-ingenierie"},
		{"Café des Lettres", "cafe-des-lettres"},
		{"Résidence A", "residence-a"},
		{"  Tour   2000  ", "tour-2000"},
		{"???", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewBuildingID(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	id := NewBuildingID("Piscine Olympique", rng)
	if ok, _ := regexp.MatchString(`^piscine-olympique-\d{4}$`, id); !ok {
		t.Errorf("unexpected id format: %q", id)
	}

	// An unusable name still yields a valid id.
	id = NewBuildingID("???", rng)
	if ok, _ := regexp.MatchString(`^batiment-\d{4}$`, id); !ok {
		t.Errorf("unexpected fallback id: %q", id)
	}
}
