package entity

import (
	"encoding/json"
	"sort"
)

// unknownCenter groups listing items that arrive without a center name.
const unknownCenter = "Unknown Center"

// Facility is a single bookable resource (room, field, rink...) at a center.
// Identity is the upstream ID, which is stable across runs. Only the fields
// below are retained from the listing endpoint; everything else is discarded
// at ingestion.
type Facility struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TypeName    string `json:"type_name"`
	TypeID      int64  `json:"type_id"`
	SiteID      int64  `json:"site_id"`
	MaxCapacity *int   `json:"max_capacity"`
	Bookable    bool   `json:"bookable"`

	// Center fields live at the center level in the persisted catalog and are
	// re-populated on load.
	CenterID   int64  `json:"-"`
	CenterName string `json:"-"`
}

// Center is a physical site grouping multiple facilities.
type Center struct {
	CenterID   int64      `json:"center_id"`
	Facilities []Facility `json:"facilities"`
}

// Catalog is the persisted, deduplicated set of all known facilities grouped
// by center name. Facilities are only ever appended; entries that disappear
// upstream are not pruned.
type Catalog struct {
	Centers map[string]*Center

	// index maps facility ID to owning center name. A facility ID appears
	// under exactly one center per snapshot.
	index map[int64]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Centers: make(map[string]*Center),
		index:   make(map[int64]string),
	}
}

// Has reports whether a facility with the given ID is already known.
func (c *Catalog) Has(id int64) bool {
	_, ok := c.index[id]
	return ok
}

// Insert adds a facility under its center. It returns false without modifying
// the catalog when the ID is already present, so existing entries are never
// overwritten.
func (c *Catalog) Insert(f Facility) bool {
	if _, ok := c.index[f.ID]; ok {
		return false
	}
	name := f.CenterName
	if name == "" {
		name = unknownCenter
		f.CenterName = name
	}
	center := c.Centers[name]
	if center == nil {
		center = &Center{CenterID: f.CenterID}
		c.Centers[name] = center
	}
	center.Facilities = append(center.Facilities, f)
	c.index[f.ID] = name
	return true
}

// Size returns the total number of facilities across all centers.
func (c *Catalog) Size() int {
	return len(c.index)
}

// Facilities flattens the catalog into a single list with center fields
// populated, ordered by center name for stable iteration.
func (c *Catalog) Facilities() []Facility {
	names := make([]string, 0, len(c.Centers))
	for name := range c.Centers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Facility, 0, len(c.index))
	for _, name := range names {
		center := c.Centers[name]
		for _, f := range center.Facilities {
			f.CenterName = name
			f.CenterID = center.CenterID
			out = append(out, f)
		}
	}
	return out
}

// Bookable returns the facilities that accept internet permits.
func (c *Catalog) Bookable() []Facility {
	var out []Facility
	for _, f := range c.Facilities() {
		if f.Bookable {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON writes the persisted catalog shape:
// center name -> {center_id, facilities}.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Centers)
}

// UnmarshalJSON reads the persisted catalog shape and rebuilds the ID index
// and the per-facility center fields.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	centers := make(map[string]*Center)
	if err := json.Unmarshal(data, &centers); err != nil {
		return err
	}
	c.Centers = centers
	c.index = make(map[int64]string)
	for name, center := range centers {
		for i := range center.Facilities {
			f := &center.Facilities[i]
			f.CenterName = name
			f.CenterID = center.CenterID
			c.index[f.ID] = name
		}
	}
	return nil
}

// CountByType tallies facilities per type name across the whole catalog.
func (c *Catalog) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, center := range c.Centers {
		for _, f := range center.Facilities {
			name := f.TypeName
			if name == "" {
				name = "Unknown"
			}
			counts[name]++
		}
	}
	return counts
}
