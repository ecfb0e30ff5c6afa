// server/internal/handlers/calculator.go
package handlers

import (
	"net/http"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/services"
	"github.com/geordievannese/garuda-calculator/server/views"
	"github.com/geordievannese/garuda-calculator/server/views/components"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

// PageControllerKey is the context key under which the router stores this browser's page controller.
const PageControllerKey = "page_controller"

// CalculatorHandler serves the calculator page and its HTMX interactions.
type CalculatorHandler struct {
	log  *zap.Logger
	form *models.FormDefinition
}

func NewCalculatorHandler(log *zap.Logger, form *models.FormDefinition) *CalculatorHandler {
	return &CalculatorHandler{log: log, form: form}
}

func (h *CalculatorHandler) controller(c *gin.Context) *calculator.Controller {
	return c.MustGet(PageControllerKey).(*calculator.Controller)
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (h *CalculatorHandler) renderPage(c *gin.Context, page calculator.Page, alert templ.Component) {
	csrfToken := c.GetString("csrf_token")
	cspNonce := c.GetString("csp_nonce")

	content := views.CalculatorPage(h.form, page, csrfToken, alert)
	c.Status(http.StatusOK)
	err := views.Layout(h.form.Title, csrfToken, cspNonce).Render(templ.WithChildren(c.Request.Context(), content), c.Writer)
	if err != nil {
		h.log.Error("Error rendering calculator page", zap.Error(err))
	}
}

// ShowCalculator renders the full page with this browser's current state.
func (h *CalculatorHandler) ShowCalculator(c *gin.Context) {
	h.renderPage(c, h.controller(c).Snapshot(), nil)
}

// Calculate submits the posted form. HTMX requests get the panels fragment with an
// out-of-band swap that clears #alerts, or an alert retargeted into #alerts when
// the prediction endpoint fails.
func (h *CalculatorHandler) Calculate(c *gin.Context) {
	ctrl := h.controller(c)

	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Invalid form submission")
		return
	}
	form := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if key == "_csrf" || len(values) == 0 {
			continue
		}
		form[key] = values[0]
	}

	if err := ctrl.Submit(c.Request.Context(), form); err != nil {
		h.log.Error("Prediction failed", zap.Error(err), zap.Bool("server_error", services.IsServerError(err)))
		alert := components.Alert(calculator.AlertMessage, "error")
		if isHTMX(c) {
			c.Header("HX-Retarget", "#alerts")
			c.Header("HX-Reswap", "innerHTML")
			c.Status(http.StatusOK)
			if err := alert.Render(c.Request.Context(), c.Writer); err != nil {
				h.log.Error("Error rendering alert", zap.Error(err))
			}
			return
		}
		h.renderPage(c, ctrl.Snapshot(), alert)
		return
	}

	page := ctrl.Snapshot()
	if isHTMX(c) {
		c.Status(http.StatusOK)
		if err := views.Panels(page).Render(c.Request.Context(), c.Writer); err != nil {
			h.log.Error("Error rendering results", zap.Error(err))
			return
		}
		if err := views.ClearedAlerts().Render(c.Request.Context(), c.Writer); err != nil {
			h.log.Error("Error rendering alerts reset", zap.Error(err))
		}
		return
	}
	h.renderPage(c, page, nil)
}

// Reset restores the form defaults and clears results.
func (h *CalculatorHandler) Reset(c *gin.Context) {
	ctrl := h.controller(c)
	ctrl.Reset()

	page := ctrl.Snapshot()
	if isHTMX(c) {
		c.Status(http.StatusOK)
		if err := views.Calculator(h.form, page, c.GetString("csrf_token")).Render(c.Request.Context(), c.Writer); err != nil {
			h.log.Error("Error rendering calculator", zap.Error(err))
		}
		return
	}
	h.renderPage(c, page, nil)
}

// Chart returns the echarts options for the current results.
func (h *CalculatorHandler) Chart(c *gin.Context) {
	page := h.controller(c).Snapshot()
	if len(page.Cards) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no results"})
		return
	}
	c.JSON(http.StatusOK, generateOutcomeChart(page.Cards).JSON())
}

// generateOutcomeChart plots COIL against CLIP for each outcome measure.
func generateOutcomeChart(cards []calculator.ResultCard) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Predicted outcomes",
			Subtitle: "Percent, by treatment",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	var measures []string
	series := map[string][]opts.BarData{}
	for _, card := range cards {
		if len(measures) == 0 || measures[len(measures)-1] != card.Measure {
			measures = append(measures, card.Measure)
		}
		var value interface{} = "-"
		if card.Percent.Valid {
			value = card.Percent.Float64
		}
		series[card.Modality] = append(series[card.Modality], opts.BarData{Value: value})
	}

	bar.SetXAxis(measures)
	for _, modality := range []string{"COIL", "CLIP"} {
		bar.AddSeries(modality, series[modality])
	}
	// Moves the x axis categories into the options before JSON().
	bar.Validate()
	return bar
}
