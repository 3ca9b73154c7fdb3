package weather

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: empty city name", ErrValidation), "Veuillez entrer un nom de ville"},
		{ErrPermissionDenied, "Permission de localisation refusée"},
		{fmt.Errorf("%w: timeout", ErrLocationUnavailable), "Erreur lors de la récupération de la localisation"},
		{fmt.Errorf("%w: \"Atlantis\"", ErrCityNotFound), "Ville non trouvée. Veuillez vérifier l'orthographe."},
		{fmt.Errorf("%w: status 500", ErrNetwork), "Erreur lors de la récupération des données météo"},
		{ErrStorage, "Impossible d'enregistrer les recherches récentes"},
		{errors.New("anything else"), "Erreur lors de la récupération des données météo"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err), tt.err.Error())
	}
}

func TestSampleHelpers(t *testing.T) {
	s := Sample{TimestampText: "2024-06-05 12:00:00", WindSpeedMs: 10}

	assert.Equal(t, "2024-06-05", s.Date())
	hour, ok := s.Hour()
	assert.True(t, ok)
	assert.Equal(t, 12, hour)
	assert.InDelta(t, 36.0, s.WindSpeedKmh(), 1e-9)

	_, ok = Sample{TimestampText: "garbage"}.Hour()
	assert.False(t, ok)

	assert.True(t, Coordinates{}.IsZero())
	assert.False(t, Coordinates{Latitude: 1}.IsZero())
}
