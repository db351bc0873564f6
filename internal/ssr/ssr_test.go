package ssr_test

import (
	"bytes"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/ssr"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func expand(t *testing.T, input string, fragment bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ssr.Expand(&buf, strings.NewReader(input), fragment))
	return buf.String()
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "primary button",
			input: `<button-primary type="submit">Next</button-primary>`,
			want:  `<button type="submit" class="button button-primary">Next</button>`,
		},
		{
			name:  "party button with default label",
			input: `<party-button party="democrat"></party-button>`,
			want:  `<button type="submit" name="party" value="Democrat" class="button party-button party-democrat">Democrat</button>`,
		},
		{
			name:  "selected party button keeps its label",
			input: `<party-button party="Republican" selected disabled>GOP</party-button>`,
			want: `<button disabled="" type="submit" name="party" value="Republican" ` +
				`class="button party-button party-republican selected" aria-pressed="true">GOP</button>`,
		},
		{
			name:  "plain html is untouched",
			input: `<p class="score">1 / 2 (50.0%)</p>`,
			want:  `<p class="score">1 / 2 (50.0%)</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, expand(t, tt.input, true))
		})
	}
}

func TestExpand_Document(t *testing.T) {
	out := expand(t, `<!DOCTYPE html><html><head><title>Quiz</title></head><body><form>`+
		`<party-button party="Republican"></party-button><party-button party="Democrat"></party-button>`+
		`</form></body></html>`, false)

	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "Quiz", doc.Find("title").Text())
	require.Zero(t, doc.Find("party-button").Length())

	var values []string
	doc.Find(`form button[name="party"]`).Each(func(_ int, s *goquery.Selection) {
		values = append(values, s.AttrOr("value", ""))
	})
	require.Equal(t, []string{string(models.PartyRepublican), string(models.PartyDemocrat)}, values)
}

func TestExpand_InvalidParty(t *testing.T) {
	var buf bytes.Buffer
	err := ssr.Expand(&buf, strings.NewReader(`<party-button party="Whig"></party-button>`), true)
	require.ErrorIs(t, err, models.ErrInvalidParty)
}
