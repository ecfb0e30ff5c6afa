package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/services"

	"go.uber.org/zap"
)

// State of a controller's request cycle.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Page is a copy of everything a controller displays.
type Page struct {
	Form    map[string]string
	Derived DerivedView
	Cards   []ResultCard
	State   State
}

// Value returns the current form value of a field.
func (p Page) Value(fieldID string) string {
	return p.Form[fieldID]
}

// Controller drives one calculator page: it owns the page's form values, the
// derived-field display and the result cards.
//
// Display state is only locked while it is read or written, never across the
// prediction request, so concurrent submissions all render and the last one to
// complete wins.
type Controller struct {
	log       *zap.Logger
	predictor services.Predictor
	metrics   *metrics.Registry
	defaults  map[string]string

	mu       sync.Mutex
	form     map[string]string
	derived  DerivedView
	cards    []ResultCard
	inFlight int
}

// NewController creates a controller in its reset state.
func NewController(log *zap.Logger, predictor services.Predictor, m *metrics.Registry, defaults map[string]string) *Controller {
	c := &Controller{
		log:       log,
		predictor: predictor,
		metrics:   m,
		defaults:  copyForm(defaults),
	}
	c.resetLocked()
	return c
}

// Normalize reads a field from the page's form. Missing or blank fields are absent.
// Numeric and category fields parse as numbers, yielding NaN for unparseable text;
// everything else is the trimmed string.
func (c *Controller) Normalize(fieldID string) models.Value {
	c.mu.Lock()
	raw, ok := c.form[fieldID]
	c.mu.Unlock()
	return normalize(fieldID, raw, ok)
}

func normalize(fieldID, raw string, present bool) models.Value {
	if !present {
		return models.Absent()
	}
	v := strings.TrimSpace(raw)
	if v == "" {
		return models.Absent()
	}
	switch models.GroupOf(fieldID) {
	case models.GroupNumeric, models.GroupCategory:
		return models.Number(parseNumber(v))
	default:
		return models.Text(v)
	}
}

// decimalLiteral is the decimal subset of a JavaScript numeric string.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber follows JavaScript's Number() for trimmed, non-empty text: decimal
// and exponent forms, unsigned 0x/0o/0b integers and signed Infinity. Anything
// else, including Go-only forms such as hex floats or "inf", is NaN.
func parseNumber(s string) float64 {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	// Out of range parses to ±Inf or 0, as in JavaScript.
	return f
}

// Record builds the outgoing predictor record from the current form.
func (c *Controller) Record() models.PredictorRecord {
	return models.NewPredictorRecord(c.Normalize)
}

// Submit replaces the page's form with the posted values, sends the predictor
// record and renders the response. On failure nothing is rendered and the
// returned error wraps a *services.ServerError for transport or status failures.
func (c *Controller) Submit(ctx context.Context, form map[string]string) error {
	c.metrics.Inc(metrics.Submissions)

	c.mu.Lock()
	c.form = copyForm(form)
	c.inFlight++
	c.mu.Unlock()
	defer c.settle()

	record := c.Record()
	for _, id := range models.PredictorFields {
		if record.Get(id).IsNaN() {
			c.log.Warn("Non-numeric value sent as null", zap.String("field", id), zap.String("value", form[id]))
		}
	}

	prediction, err := c.predictor.Predict(ctx, record)
	if err != nil {
		c.metrics.Inc(metrics.SubmissionErrors)
		return fmt.Errorf("submit prediction: %w", err)
	}

	c.RenderDerived(prediction.Derived)
	c.RenderResults(prediction.PredictionResult)
	return nil
}

func (c *Controller) settle() {
	c.mu.Lock()
	if c.inFlight > 0 {
		c.inFlight--
	}
	c.mu.Unlock()
}

// RenderDerived replaces the derived-field display.
func (c *Controller) RenderDerived(d models.DerivedFields) {
	view := DerivedViewOf(d)
	c.mu.Lock()
	c.derived = view
	c.mu.Unlock()
}

// RenderResults replaces all result cards.
func (c *Controller) RenderResults(p models.PredictionResult) {
	cards := Cards(p)
	c.mu.Lock()
	c.cards = cards
	c.mu.Unlock()
}

// Reset restores default form values, clears the results and the derived display.
func (c *Controller) Reset() {
	c.metrics.Inc(metrics.Resets)
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Controller) resetLocked() {
	c.form = copyForm(c.defaults)
	c.derived = AbsentDerived()
	c.cards = nil
	c.inFlight = 0
}

// State reports whether a submission is in flight.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight > 0 {
		return StateAwaiting
	}
	return StateIdle
}

// Snapshot returns a copy of the page's display state.
func (c *Controller) Snapshot() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	cards := make([]ResultCard, len(c.cards))
	copy(cards, c.cards)
	state := StateIdle
	if c.inFlight > 0 {
		state = StateAwaiting
	}
	return Page{
		Form:    copyForm(c.form),
		Derived: c.derived,
		Cards:   cards,
		State:   state,
	}
}

func copyForm(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
