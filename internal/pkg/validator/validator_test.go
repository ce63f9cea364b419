package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rock-radar/internal/domain"
	apperrors "github.com/rock-radar/internal/pkg/errors"
)

func TestValidateRequest_RouteRecord(t *testing.T) {
	valid := domain.RouteRecord{
		ID:       "1",
		Name:     "Epinephrine",
		Grade:    "5.9",
		Rating:   3.9,
		AreaPath: []string{"Nevada", "Red Rock"},
	}
	assert.NoError(t, ValidateRequest(valid))

	invalid := valid
	invalid.Rating = 7
	invalid.AreaPath = nil

	err := ValidateRequest(invalid)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRequest))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "Rating")
	assert.Contains(t, appErr.Details, "AreaPath")
}
