// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"

	"github.com/pdiddy/nanoextract/pkg/types"
)

var (
	cellViabilityRe = regexp.MustCompile(`(?i)\b(?:cell\s+)?viability\s*(?:was|is|of|:)?\s*(\d{1,3}(?:\.\d+)?\s*%|\bIC\s*50\b\s*=?\s*\d+(?:\.\d+)?\s*(?:µg/mL|μg/mL|ug/mL|mg/L|µM|μM|mM)?)`)
	rosRe           = regexp.MustCompile(`(?i)\bROS\b|\breactive\s+oxygen\s+species\b`)
)

// ROSMentioned is the BioEffects.ROS value when reactive oxygen species are
// discussed.
const ROSMentioned = "mentioned"

// BioEffects extracts cell viability and ROS mentions. The evidence excerpt
// comes from the viability match when there is one, else from the first ROS
// mention.
func BioEffects(text string) types.BioEffects {
	var out types.BioEffects

	if m := cellViabilityRe.FindStringSubmatchIndex(text); m != nil {
		out.CellViability = Collapse(text[m[2]:m[3]])
		out.Evidence = Truncate(Collapse(text[m[0]:m[1]]), 250)
	}

	if loc := rosRe.FindStringIndex(text); loc != nil {
		out.ROS = ROSMentioned
		if out.Evidence == "" {
			out.Evidence = Truncate(Collapse(Window(text, loc[0], loc[0], 80, 120)), 250)
		}
	}
	return out
}
