// Package servicearea answers whether a location is within the company's
// coverage. The primary check is by ZIP code; city names are a secondary
// match for callers who don't know their ZIP.
package servicearea

import (
	"fmt"
	"strings"
)

// primaryZips covers roughly a 25-mile radius around Salem, OR plus the
// extended Portland and Albany/Corvallis/Eugene corridors.
var primaryZips = map[string]struct{}{
	// Salem
	"97301": {}, "97302": {}, "97303": {}, "97304": {}, "97305": {},
	"97306": {}, "97317": {},
	// Keizer
	"97307": {},
	// West: Independence, Monmouth, Dallas, Rickreall, Willamina, Sheridan
	"97351": {}, "97361": {}, "97338": {}, "97371": {}, "97396": {}, "97378": {},
	// South: Jefferson, Millersburg
	"97352": {}, "97321": {},
	// East: Turner, Aumsville, Sublimity, Stayton, Silverton
	"97392": {}, "97325": {}, "97385": {}, "97383": {}, "97381": {},
	// North: McMinnville through Hubbard
	"97128": {}, "97101": {}, "97114": {}, "97127": {}, "97132": {},
	"97026": {}, "97071": {}, "97032": {},
	// Portland and surrounding
	"97201": {}, "97202": {}, "97203": {}, "97204": {}, "97205": {},
	"97206": {}, "97209": {}, "97210": {}, "97211": {}, "97212": {},
	"97213": {}, "97214": {}, "97215": {}, "97216": {}, "97217": {},
	"97218": {}, "97219": {}, "97220": {}, "97221": {}, "97222": {},
	"97223": {}, "97224": {}, "97225": {}, "97227": {}, "97229": {},
	"97230": {}, "97231": {}, "97232": {}, "97233": {}, "97236": {},
	"97239": {}, "97266": {}, "97267": {}, "97005": {}, "97006": {},
	"97007": {}, "97008": {}, "97015": {}, "97027": {}, "97030": {},
	"97034": {}, "97035": {}, "97045": {}, "97060": {}, "97062": {},
	"97068": {}, "97080": {}, "97086": {}, "97089": {},
	// Albany, Corvallis, Eugene
	"97322": {}, "97330": {}, "97331": {}, "97333": {}, "97401": {},
	"97402": {}, "97403": {}, "97404": {}, "97405": {}, "97408": {},
}

var extendedCities = []string{
	"Portland", "Albany", "Eugene", "Corvallis", "Salem", "Keizer",
	"Independence", "Monmouth", "Dallas", "Rickreall", "Willamina", "Sheridan",
	"Jefferson", "Millersburg", "Turner", "Aumsville", "Sublimity", "Stayton",
	"Silverton", "McMinnville", "Amity", "Dayton", "Lafayette", "Newberg",
	"Brooks", "Gervais", "Woodburn", "Hubbard",
}

// Check reports whether the given ZIP or city is in the service area, with a
// caller-facing reason. ZIP takes precedence; city matching tolerates
// partial names in either direction.
func Check(zip, city string) (bool, string) {
	zip = strings.TrimSpace(zip)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	city = strings.TrimSpace(city)

	if zip != "" {
		if _, ok := primaryZips[zip]; ok {
			return true, fmt.Sprintf("Zip code %s is in our primary service area.", zip)
		}
	}
	if city != "" {
		lower := strings.ToLower(city)
		for _, served := range extendedCities {
			servedLower := strings.ToLower(served)
			if strings.Contains(lower, servedLower) || strings.Contains(servedLower, lower) {
				return true, fmt.Sprintf("City %s is in our service area.", city)
			}
		}
	}
	if zip != "" {
		return false, fmt.Sprintf("Zip code %s appears to be outside our standard service area.", zip)
	}
	if city != "" {
		return false, fmt.Sprintf("City %s appears to be outside our standard service area.", city)
	}
	return false, "No location information provided to validate."
}
