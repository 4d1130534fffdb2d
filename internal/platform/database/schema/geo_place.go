// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// GeoPlaceTable represents one of the 'geo.{taxonomy}{level}' tables.
//
// The state and territory hierarchies are stored in eight structurally
// identical tables; only the table name and the parent table differ.
type GeoPlaceTable struct {
	Table       string
	ParentTable string
	ID          string
	ParentID    string
	Title       string
	Slug        string
	ImagePath   string
	Gallery     string
	Content     string
	CreatedAt   string
	UpdatedAt   string
}

func geoPlace(table, parent string) GeoPlaceTable {
	return GeoPlaceTable{
		Table:       table,
		ParentTable: parent,
		ID:          "id",
		ParentID:    "parentid",
		Title:       "title",
		Slug:        "slug",
		ImagePath:   "imagepath",
		Gallery:     "gallery",
		Content:     "content",
		CreatedAt:   "createdat",
		UpdatedAt:   "updatedat",
	}
}

// GeoPlaces maps "{taxonomy}/{level}" to its table definition.
var GeoPlaces = map[string]GeoPlaceTable{
	"state/region":      geoPlace("geo.stateregion", ""),
	"state/district":    geoPlace("geo.statedistrict", "geo.stateregion"),
	"state/subdistrict": geoPlace("geo.statesubdistrict", "geo.statedistrict"),
	"state/village":     geoPlace("geo.statevillage", "geo.statesubdistrict"),

	"territory/region":      geoPlace("geo.territoryregion", ""),
	"territory/district":    geoPlace("geo.territorydistrict", "geo.territoryregion"),
	"territory/subdistrict": geoPlace("geo.territorysubdistrict", "geo.territorydistrict"),
	"territory/village":     geoPlace("geo.territoryvillage", "geo.territorysubdistrict"),
}

// Columns returns every column in select order.
func (t GeoPlaceTable) Columns() []string {
	return []string{t.ID, t.ParentID, t.Title, t.Slug, t.ImagePath, t.Gallery, t.Content, t.CreatedAt, t.UpdatedAt}
}
