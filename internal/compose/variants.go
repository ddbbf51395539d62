package compose

import (
	"github.com/google/uuid"

	"github.com/nmorane/flowdeck/pkg/domain"
)

// DefaultVariants picks the initially shown variant for each section: the
// primary-flagged one when present, otherwise the first in fetch order.
// Sections with no variants are absent from the map.
func DefaultVariants(sections []domain.PlaybookSection, variants []domain.SectionVariant) map[uuid.UUID]uuid.UUID {
	bySection := GroupBy(variants, func(v domain.SectionVariant) string { return v.SectionID.String() })

	out := make(map[uuid.UUID]uuid.UUID, len(sections))
	for _, sec := range sections {
		vs := bySection[sec.ID.String()]
		if len(vs) == 0 {
			continue
		}
		chosen := vs[0]
		for _, v := range vs {
			if v.IsPrimary {
				chosen = v
				break
			}
		}
		out[sec.ID] = chosen.ID
	}
	return out
}
