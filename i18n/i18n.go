// Package i18n holds the UI strings and picks the language for a request.
// English strings double as message keys; French translations live in the catalog.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	supported = []language.Tag{language.English, language.French}
	matcher   = language.NewMatcher(supported)
	cat       = newCatalog()
)

var french = map[string]string{
	"Airbnb price estimator":                          "Prédicteur de prix Airbnb",
	"Estimate the nightly price of your listing":      "Estimez le prix par nuit de votre logement",
	"Location":                                        "Localisation",
	"Neighbourhood group":                             "Groupe de quartiers",
	"Latitude":                                        "Latitude",
	"Longitude":                                       "Longitude",
	"Listing":                                         "Propriétés du logement",
	"Room type":                                       "Type de chambre",
	"Minimum nights":                                  "Nombre minimum de nuits",
	"Number of reviews":                               "Nombre d'avis",
	"Availability (days per year)":                    "Disponibilité (jours par an)",
	"Show debug information":                          "Afficher les informations de debug",
	"Predict the price":                               "Prédire le prix",
	"Predicted price: %s per night":                   "Prix prédit : %s par nuit",
	"Estimated monthly price":                         "Prix mensuel estimé",
	"Price per week":                                  "Prix par semaine",
	"Annual revenue":                                  "Revenus annuels",
	"%d days":                                         "%d jours",
	"Price comparison":                                "Comparaison des prix",
	"Your listing":                                    "Votre logement",
	"Neighbourhood average":                           "Moyenne quartier",
	"City average":                                    "Moyenne ville",
	"Optimisation tips":                               "Conseils d'optimisation",
	"Increase availability to maximise your income":   "Augmentez la disponibilité pour maximiser vos revenus",
	"Encourage more reviews to improve visibility":    "Encouragez plus d'avis pour améliorer votre visibilité",
	"Lower the minimum stay to attract more bookings": "Réduisez le minimum de nuits pour attirer plus de réservations",
	"Prediction failed: %s":                           "Erreur lors de la prédiction : %s",
	"The model could not be loaded.":                  "Impossible de charger le modèle.",
	"Debug information":                               "Informations de debug",
	"Model features":                                  "Features du modèle",
	"Model: %s (version %s)":                          "Modèle : %s (version %s)",
	"%s must be a number":                             "%s doit être un nombre",
}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, translation := range french {
		if err := b.SetString(language.French, key, translation); err != nil {
			panic(fmt.Sprintf("i18n: french entry %q: %v", key, err))
		}
	}
	return b
}

// Match picks the supported language for an explicit choice (such as a lang query parameter)
// or, when that is empty, an Accept-Language header.
func Match(choice, acceptLanguage string) language.Tag {
	_, idx := language.MatchStrings(matcher, choice, acceptLanguage)
	return supported[idx]
}

// Printer returns a printer that translates catalog keys and formats numbers for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Supported lists the languages the UI is translated into.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Money formats a dollar amount with two decimals using p's number conventions.
func Money(p *message.Printer, amount float64) string {
	return p.Sprintf("$%.2f", amount)
}
