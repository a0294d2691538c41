package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"airbnbprice/estimate"
	"airbnbprice/i18n"
	"airbnbprice/ml"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// defaultLanguage applies when neither the lang parameter nor Accept-Language picks one.
var defaultLanguage = language.English

// SetDefaultLanguage picks the closest supported language to tag, English when nothing matches.
func SetDefaultLanguage(tag string) {
	defaultLanguage = i18n.Match(tag, "")
}

var tipMessages = map[estimate.TipCode]string{
	estimate.TipIncreaseAvailability: "Increase availability to maximise your income",
	estimate.TipMoreReviews:          "Encourage more reviews to improve visibility",
	estimate.TipFewerMinimumNights:   "Lower the minimum stay to attract more bookings",
}

var comparisonLabels = map[string]string{
	"listing":               "Your listing",
	"neighbourhood_average": "Neighbourhood average",
	"city_average":          "City average",
}

func RegisterUI(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("POST /predict", handleFormPredict)
}

// formValues holds the raw form inputs so a failed submission re-renders what the user typed.
type formValues struct {
	NeighbourhoodGroup string
	RoomType           string
	Latitude           string
	Longitude          string
	MinimumNights      string
	NumberOfReviews    string
	Availability365    string
	Debug              bool
}

func defaultForm() formValues {
	l := ml.ExampleListing()
	return formValues{
		NeighbourhoodGroup: l.NeighbourhoodGroup,
		RoomType:           l.RoomType,
		Latitude:           strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		Longitude:          strconv.FormatFloat(l.Longitude, 'f', -1, 64),
		MinimumNights:      strconv.Itoa(l.MinimumNights),
		NumberOfReviews:    strconv.Itoa(l.NumberOfReviews),
		Availability365:    strconv.Itoa(l.Availability365),
	}
}

type comparisonRow struct {
	Label string
	Price string
	Width int
}

type resultView struct {
	Price        string
	Weekly       string
	WeeklyDelta  string
	Monthly      string
	MonthlyDelta string
	Annual       string
	AnnualDays   string
	Comparison   []comparisonRow
	Tips         []string
}

type debugView struct {
	Record   string
	Features []string
}

type pageData struct {
	Lang           string
	Languages      []string
	Form           formValues
	Neighbourhoods []string
	RoomTypes      []string
	ModelLoaded    bool
	ModelLabel     string
	Result         *resultView
	Error          string
	Debug          *debugView

	printer *message.Printer
}

// T translates a UI string for the page language.
func (d pageData) T(key string, args ...any) string {
	return d.printer.Sprintf(key, args...)
}

func newPage(r *http.Request) pageData {
	lang := i18n.Match(r.FormValue("lang"), r.Header.Get("Accept-Language"))
	if r.FormValue("lang") == "" && r.Header.Get("Accept-Language") == "" {
		lang = defaultLanguage
	}
	base, _ := lang.Base()
	page := pageData{
		Lang:    base.String(),
		Form:    defaultForm(),
		printer: i18n.Printer(lang),
	}
	for _, tag := range i18n.Supported() {
		if b, _ := tag.Base(); b != base {
			page.Languages = append(page.Languages, b.String())
		}
	}
	if b := model; b != nil {
		page.ModelLoaded = true
		page.ModelLabel = page.T("Model: %s (version %s)", b.Name, b.Version)
		page.Neighbourhoods = b.Categories(ml.FieldNeighbourhoodGroup)
		page.RoomTypes = b.Categories(ml.FieldRoomType)
	} else {
		page.Error = page.T("The model could not be loaded.")
	}
	return page
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	page := newPage(r)
	status := http.StatusOK
	if !page.ModelLoaded {
		status = http.StatusServiceUnavailable
	}
	renderPage(w, status, page)
}

func handleFormPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := newPage(r)
		page.Error = page.T("Prediction failed: %s", err.Error())
		renderPage(w, http.StatusBadRequest, page)
		return
	}

	page := newPage(r)
	page.Form = readForm(r)
	if !page.ModelLoaded {
		renderPage(w, http.StatusServiceUnavailable, page)
		return
	}

	record, err := page.Form.record()
	if err != nil {
		page.Error = page.T("Prediction failed: %s", page.T("%s must be a number", err.Error()))
		renderPage(w, http.StatusBadRequest, page)
		return
	}

	if page.Form.Debug {
		page.Debug = newDebugView(record)
	}

	result, err := runPrediction(r.Context(), "form", record)
	if err != nil {
		status, _, message := classifyError(err)
		if status == http.StatusInternalServerError {
			logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
		page.Error = page.T("Prediction failed: %s", message)
		renderPage(w, status, page)
		return
	}

	page.Result = newResultView(page, result.Estimate)
	renderPage(w, http.StatusOK, page)
}

func readForm(r *http.Request) formValues {
	get := func(name string) string { return strings.TrimSpace(r.PostForm.Get(name)) }
	return formValues{
		NeighbourhoodGroup: get(ml.FieldNeighbourhoodGroup),
		RoomType:           get(ml.FieldRoomType),
		Latitude:           get(ml.FieldLatitude),
		Longitude:          get(ml.FieldLongitude),
		MinimumNights:      get(ml.FieldMinimumNights),
		NumberOfReviews:    get(ml.FieldNumberOfReviews),
		Availability365:    get(ml.FieldAvailability365),
		Debug:              r.PostForm.Get("debug") != "",
	}
}

// record converts the form into a listing record. Empty inputs are left out so the
// prediction layer reports them as missing. It returns the name of the first field
// that is not a number as the error.
func (f formValues) record() (ml.Record, error) {
	record := ml.Record{}
	if f.NeighbourhoodGroup != "" {
		record[ml.FieldNeighbourhoodGroup] = f.NeighbourhoodGroup
	}
	if f.RoomType != "" {
		record[ml.FieldRoomType] = f.RoomType
	}
	numeric := []struct {
		name  string
		value string
	}{
		{ml.FieldLatitude, f.Latitude},
		{ml.FieldLongitude, f.Longitude},
		{ml.FieldMinimumNights, f.MinimumNights},
		{ml.FieldNumberOfReviews, f.NumberOfReviews},
		{ml.FieldAvailability365, f.Availability365},
	}
	for _, field := range numeric {
		if field.value == "" {
			continue
		}
		v, err := strconv.ParseFloat(field.value, 64)
		if err != nil {
			return nil, fieldError(field.name)
		}
		record[field.name] = v
	}
	return record, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

func newDebugView(record ml.Record) *debugView {
	view := &debugView{}
	if data, err := json.MarshalIndent(record, "", "  "); err == nil {
		view.Record = string(data)
	}
	if b := model; b != nil {
		view.Features = b.Features
	}
	return view
}

func newResultView(page pageData, est estimate.Estimate) *resultView {
	money := func(v float64) string { return i18n.Money(page.printer, v) }
	delta := func(v float64) string { return page.printer.Sprintf("%+.1f%%", v) }

	view := &resultView{
		Price:        page.T("Predicted price: %s per night", money(est.Nightly)),
		Weekly:       money(est.Weekly.Value),
		WeeklyDelta:  delta(est.Weekly.DeltaPercent),
		Monthly:      money(est.Monthly.Value),
		MonthlyDelta: delta(est.Monthly.DeltaPercent),
		Annual:       money(est.Annual.Revenue),
		AnnualDays:   page.T("%d days", est.Annual.Days),
	}

	highest := est.MaxComparison()
	for _, bar := range est.Comparison {
		width := 0
		if highest > 0 {
			width = int(bar.Price / highest * 100)
		}
		view.Comparison = append(view.Comparison, comparisonRow{
			Label: page.T(comparisonLabels[bar.Label]),
			Price: money(bar.Price),
			Width: width,
		})
	}
	for _, tip := range est.Tips {
		view.Tips = append(view.Tips, page.T(tipMessages[tip]))
	}
	return view
}

func renderPage(w http.ResponseWriter, status int, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		logger.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
