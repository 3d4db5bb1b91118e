package features

import (
	"testing"

	"EventWeights/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestCodeSpace(t *testing.T) {
	codes := CodeStrings(CodeSpace([]models.EventDefinition{
		{ID: 1, Type: models.Type0},
		{ID: 2, Type: models.Type1},
	}))

	assert.Len(t, codes, 2+2+2*25)
	assert.Equal(t, []string{"1_0_0", "1_0_1", "2_1_0", "2_1_1", "2_1_0_-12", "2_1_1_-12"}, codes[:6])
	assert.Equal(t, []string{"2_1_0_12", "2_1_1_12"}, codes[len(codes)-2:])
	assert.NotContains(t, codes, "1_0_0_0")
}

func TestCodeSpaceEmpty(t *testing.T) {
	assert.Empty(t, CodeSpace(nil))
}
