package weather

import "errors"

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrCityNotFound        = errors.New("city not found")
	ErrValidation          = errors.New("invalid input")
	ErrNetwork             = errors.New("weather service request failed")
	ErrStorage             = errors.New("recent searches storage failed")
)

var messages = []struct {
	err error
	msg string
}{
	{ErrValidation, "Veuillez entrer un nom de ville"},
	{ErrPermissionDenied, "Permission de localisation refusée"},
	{ErrLocationUnavailable, "Erreur lors de la récupération de la localisation"},
	{ErrCityNotFound, "Ville non trouvée. Veuillez vérifier l'orthographe."},
	{ErrNetwork, "Erreur lors de la récupération des données météo"},
	{ErrStorage, "Impossible d'enregistrer les recherches récentes"},
}

// Message returns the user-facing message for the kind of err. Errors outside the
// taxonomy get the generic network message.
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Erreur lors de la récupération des données météo"
}
