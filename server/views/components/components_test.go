package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"
	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults_SixCardsWithFixedAUC(t *testing.T) {
	cards := calculator.Cards(models.PredictionResult{MortalityCoil: models.Float64Of(20.1)})

	var buf bytes.Buffer
	require.NoError(t, Results(cards).Render(context.Background(), &buf))
	html := buf.String()

	assert.Equal(t, 6, strings.Count(html, `class="card result"`))
	for _, auc := range []string{"0.826", "0.815", "0.707", "0.793", "0.768", "0.765"} {
		assert.Contains(t, html, "AUC "+auc)
	}
	assert.Contains(t, html, "20.1%")
	assert.Equal(t, 6, strings.Count(html, "logit: -"))
	assert.Equal(t, 6, strings.Count(html, "All predictors present"))
	assert.Contains(t, html, "Good GOSE (5–8) if CLIP")
}

func TestResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Results(nil).Render(context.Background(), &buf))
	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestResults_MissingBranch(t *testing.T) {
	card := calculator.NewResultCard(calculator.Outcomes[0], models.NullFloat64{}, calculator.LogitPlaceholder, []string{"age"})
	var buf bytes.Buffer
	require.NoError(t, Results([]calculator.ResultCard{card}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Missing: age")
	assert.Contains(t, buf.String(), `<div class="percent">—</div>`)
}

func TestAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Alert("<b>Server error</b>", "error").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `class="alert alert-error"`)
	assert.Contains(t, buf.String(), "&lt;b&gt;Server error&lt;/b&gt;")
}
