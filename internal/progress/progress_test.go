package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sponsorship-studio/engine/internal/models"
)

func rc(kind string, qty float64) *models.ResourceCommitment {
	return &models.ResourceCommitment{ResourceType: kind, Quantity: qty}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		raised *models.ResourceCommitment
		goal   *models.ResourceCommitment
		want   int
	}{
		{"no goal", rc("x", 5), nil, 0},
		{"no raised", nil, rc("x", 5), 0},
		{"both absent", nil, nil, 0},
		{"type mismatch", rc("x", 5), rc("y", 5), 0},
		{"three quarters", rc("x", 30), rc("x", 40), 75},
		{"overfunded clamps", rc("x", 999), rc("x", 10), 100},
		{"rounds half up", rc("x", 1), rc("x", 8), 13},
		{"zero goal", rc("x", 3), rc("x", 0), 0},
		{"negative goal", rc("x", 3), rc("x", -4), 0},
		{"negative raised", rc("x", -3), rc("x", 4), 0},
		{"exact", rc("servers", 10), rc("servers", 10), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Percent(tt.raised, tt.goal))
		})
	}
}

func TestOf(t *testing.T) {
	require.Equal(t, 0, Of(nil))
	require.Equal(t, 50, Of(&models.Project{Raised: rc("laptops", 2), Goal: rc("laptops", 4)}))
}
