// The fixed campus seed list. These buildings exist in every fresh world;
// everything else is created at runtime through directives.
package world

// SeedBuildings returns the baseline campus. IDs are stable and referenced
// by the environment policy tables and the department roster.
func SeedBuildings() []*Building {
	mk := func(id, name string, x, z, sx, sy, sz float64, zone Zone) *Building {
		return &Building{
			ID:       id,
			Name:     name,
			Position: Vec3{X: x, Y: DisplayHeight, Z: z},
			Size:     Vec3{X: sx, Y: sy, Z: sz},
			Activity: 0.5,
			Zone:     zone,
		}
	}

	return []*Building{
		mk("sci", "Sciences", 0, 0, 10, 12, 8, ZoneCampus),
		mk("bib", "Bibliothèque", -14, 2, 8, 9, 8, ZoneCampus),
		mk("adm", "Administration", 13, -3, 7, 10, 6, ZoneCampus),
		mk("caf", "Cafétéria", -4, 12, 8, 5, 6, ZoneCampus),
		mk("gym", "Gymnase", 12, 12, 10, 7, 8, ZoneCampus),
		mk("ing", "École d'Ingénierie", -15, -12, 9, 11, 7, ZoneCampus),
		mk("bio", "Institut de Biologie", 2, -14, 8, 9, 7, ZoneCampus),
		mk("hum", "Faculté des Humanités", -26, -4, 8, 8, 7, ZoneCampus),
		mk("art", "Pavillon des Arts", -25, 10, 7, 7, 6, ZoneCampus),
		mk("parc", "Parc Central", 4, 24, 12, 1, 12, ZoneCampus),
		mk("res-a", "Résidence A", 26, 4, 7, 12, 6, ZoneResidential),
		mk("res-b", "Résidence B", 26, -8, 7, 12, 6, ZoneResidential),
		mk("mall", "Centre Commercial", -8, -26, 12, 8, 9, ZoneCommercial),
		mk("resto", "Restaurant du Quartier", 6, -26, 6, 5, 5, ZoneCommercial),
		mk("cafe", "Café des Lettres", 18, -22, 5, 4, 5, ZoneCommercial),
	}
}
