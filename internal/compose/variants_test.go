package compose

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorane/flowdeck/pkg/domain"
)

func TestDefaultVariantsPrefersPrimary(t *testing.T) {
	sec := domain.PlaybookSection{ID: uuid.New()}
	v1 := domain.SectionVariant{ID: uuid.New(), SectionID: sec.ID}
	v2 := domain.SectionVariant{ID: uuid.New(), SectionID: sec.ID, IsPrimary: true}

	selected := DefaultVariants([]domain.PlaybookSection{sec}, []domain.SectionVariant{v1, v2})
	require.Len(t, selected, 1)
	assert.Equal(t, v2.ID, selected[sec.ID])
}

func TestDefaultVariantsFallsBackToFirstFetched(t *testing.T) {
	sec := domain.PlaybookSection{ID: uuid.New()}
	v1 := domain.SectionVariant{ID: uuid.New(), SectionID: sec.ID}
	v2 := domain.SectionVariant{ID: uuid.New(), SectionID: sec.ID}

	selected := DefaultVariants([]domain.PlaybookSection{sec}, []domain.SectionVariant{v1, v2})
	assert.Equal(t, v1.ID, selected[sec.ID])
}

func TestDefaultVariantsSkipsSectionsWithoutVariants(t *testing.T) {
	withVariants := domain.PlaybookSection{ID: uuid.New()}
	bare := domain.PlaybookSection{ID: uuid.New()}
	v := domain.SectionVariant{ID: uuid.New(), SectionID: withVariants.ID}

	selected := DefaultVariants([]domain.PlaybookSection{withVariants, bare}, []domain.SectionVariant{v})
	require.Len(t, selected, 1)
	_, ok := selected[bare.ID]
	assert.False(t, ok)
}
