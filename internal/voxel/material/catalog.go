package material

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// LoadCatalogMySQL populates a Catalog from a `voxel_material` table. This
// is a palette load, not a per-chunk index: the table holds a handful of
// material definitions shared by every chunk, not per-region state.
func LoadCatalogMySQL(ctx context.Context, dsn string) (*Catalog, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open material catalog dsn: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT material_index, base_color_r, base_color_g, base_color_b, roughness, metallic, specular,
		       emission_r, emission_g, emission_b, emission_intensity,
		       medium_density, anisotropy
		FROM voxel_material`)
	if err != nil {
		return nil, fmt.Errorf("query voxel_material: %w", err)
	}
	defer rows.Close()

	catalog := NewCatalog()
	for rows.Next() {
		var idx uint16
		var rec Record
		if err := rows.Scan(
			&idx,
			&rec.BRDF.BaseColor[0], &rec.BRDF.BaseColor[1], &rec.BRDF.BaseColor[2],
			&rec.BRDF.Roughness, &rec.BRDF.Metallic, &rec.BRDF.Specular,
			&rec.Emission.Color[0], &rec.Emission.Color[1], &rec.Emission.Color[2], &rec.Emission.Intensity,
			&rec.Medium.Density, &rec.Medium.Anisotropy,
		); err != nil {
			return nil, fmt.Errorf("scan voxel_material row: %w", err)
		}
		catalog.Put(Index(idx), rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voxel_material rows: %w", err)
	}
	return catalog, nil
}
