package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"
	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testForm() *models.FormDefinition {
	def := &models.FormDefinition{Title: "Test"}
	for _, id := range models.PredictorFields {
		f := models.FormField{ID: id, Label: id, Section: "Patient", Type: "number"}
		if id == "location" {
			f.Type = "select"
			f.Options = []models.Option{{Value: "", Label: "—"}, {Value: "mca", Label: "MCA"}}
		}
		def.Fields = append(def.Fields, f)
	}
	return def
}

func TestCalculator_DOMContract(t *testing.T) {
	page := calculator.Page{
		Form:    map[string]string{"age": "55", "location": "mca"},
		Derived: calculator.AbsentDerived(),
	}
	var buf bytes.Buffer
	require.NoError(t, Calculator(testForm(), page, "tok").Render(context.Background(), &buf))
	html := buf.String()

	for _, id := range []string{"calc-form", "results", "gcs_lt15", "dn_ratio", "neck_gt4", "reset"} {
		assert.Contains(t, html, `id="`+id+`"`)
	}
	for _, id := range models.PredictorFields {
		assert.Contains(t, html, `name="`+id+`"`)
	}
	assert.Contains(t, html, `value="55"`)
	assert.Contains(t, html, `<option value="mca" selected>MCA</option>`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.NotContains(t, html, "outcome-chart")
}

func TestPanels_RendersDerivedAndCards(t *testing.T) {
	page := calculator.Page{
		Derived: calculator.DerivedView{GCSLt15: "Yes", DNRatio: "2.57", NeckGt4: "No"},
		Cards:   calculator.Cards(models.PredictionResult{}),
	}
	var buf bytes.Buffer
	require.NoError(t, Panels(page).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `<dd id="gcs_lt15">Yes</dd>`)
	assert.Contains(t, html, `<dd id="dn_ratio">2.57</dd>`)
	assert.Contains(t, html, `<dd id="neck_gt4">No</dd>`)
	assert.Equal(t, 6, strings.Count(html, `class="card result"`))
	assert.Contains(t, html, "outcome-chart")
}

func TestLayout_WrapsChildren(t *testing.T) {
	child := templ.Raw("<p>child</p>")
	ctx := templ.WithChildren(context.Background(), child)

	var buf bytes.Buffer
	require.NoError(t, Layout("GARUDA", "tok", "nonce123").Render(ctx, &buf))
	html := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!doctype html>"))
	assert.Contains(t, html, "<p>child</p>")
	assert.Contains(t, html, `nonce="nonce123"`)
	assert.Contains(t, html, `<div id="alerts"></div>`)
	assert.Contains(t, html, `hx-headers="{&#34;X-CSRF-Token&#34;:&#34;tok&#34;}"`)
}

func TestLayout_CarriesClientAlertTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Layout("GARUDA", "tok", "n").Render(context.Background(), &buf))
	html := buf.String()

	start := strings.Index(html, `<template id="alert-template">`)
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(html[start:], "</template>")
	require.Greater(t, end, 0)
	tmpl := html[start : start+end]
	assert.Contains(t, tmpl, `class="alert alert-error"`)
	assert.Contains(t, tmpl, calculator.AlertMessage)
}

func TestCalculatorPage_AlertAboveForm(t *testing.T) {
	page := calculator.Page{Derived: calculator.AbsentDerived()}
	alert := templ.Raw(`<div class="alert alert-error">boom</div>`)

	var buf bytes.Buffer
	require.NoError(t, CalculatorPage(testForm(), page, "tok", alert).Render(context.Background(), &buf))
	html := buf.String()
	assert.True(t, strings.HasPrefix(html, `<div class="alert alert-error">boom</div><section id="calculator"`))

	buf.Reset()
	require.NoError(t, CalculatorPage(testForm(), page, "tok", nil).Render(context.Background(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `<section id="calculator"`))
}

func TestCalculator_NumberInputAttributes(t *testing.T) {
	def := &models.FormDefinition{Fields: []models.FormField{
		{ID: "age", Label: "Age", Unit: "years", Section: "Patient", Type: "number", Min: "0", Max: "120", Step: "1"},
		{ID: "dome", Label: "Dome", Section: "Aneurysm", Type: "number"},
	}}
	var buf bytes.Buffer
	require.NoError(t, Calculator(def, calculator.Page{Derived: calculator.AbsentDerived()}, "tok").Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `<label for="age">Age (years)</label>`)
	assert.Contains(t, html, `<input id="age" name="age" type="number" value="" min="0" max="120" step="1">`)
	assert.Contains(t, html, `<input id="dome" name="dome" type="number" value="">`)
}

func TestClearedAlerts_SwapsOutOfBand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClearedAlerts().Render(context.Background(), &buf))
	assert.Equal(t, `<div id="alerts" hx-swap-oob="true"></div>`, buf.String())
}
