// Package ssr expands the custom elements used in the page templates into plain HTML before it is sent to the
// browser.
package ssr

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"io"
	"log/slog"
	"strings"
)

const buttonClass = "button"

// Expand rewrites the custom elements read from reader and writes the result to writer.
//
//   - <button-primary> becomes a <button> with the primary style.
//   - <party-button party="Democrat"> becomes a submit button posting the party as the guess. The label defaults to
//     the party name. A "selected" attribute marks the player's revealed guess.
//
// With fragment set only the contents of the body are written, which is what htmx partials need.
func Expand(writer io.Writer, reader io.Reader, fragment bool) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return errors.Wrap(err, "parse html")
	}

	doc.Find("button-primary").Each(func(_ int, s *goquery.Selection) {
		toButton(s)
		s.AddClass(buttonClass, "button-primary")
	})

	var partyErr error
	doc.Find("party-button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, _ := s.Attr("party")
		party, parseErr := models.ParseParty(raw)
		if parseErr != nil {
			partyErr = errors.Wrap(parseErr, "expand party-button", slog.String("party", raw))
			return false
		}
		_, selected := s.Attr("selected")
		s.RemoveAttr("party")
		s.RemoveAttr("selected")
		toButton(s)
		s.SetAttr("type", "submit")
		s.SetAttr("name", "party")
		s.SetAttr("value", string(party))
		classes := []string{buttonClass, "party-button", "party-" + strings.ToLower(string(party))}
		if selected {
			classes = append(classes, "selected")
		}
		s.AddClass(classes...)
		if selected {
			s.SetAttr("aria-pressed", "true")
		}
		if strings.TrimSpace(s.Text()) == "" {
			s.SetText(string(party))
		}
		return true
	})
	if partyErr != nil {
		return partyErr
	}

	if !fragment {
		for _, n := range doc.Nodes {
			if err = html.Render(writer, n); err != nil {
				return errors.Wrap(err, "render document")
			}
		}
		return nil
	}

	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(writer, c); err != nil {
				return errors.Wrap(err, "render fragment")
			}
		}
	}
	return nil
}

func toButton(s *goquery.Selection) {
	for _, n := range s.Nodes {
		n.Data = "button"
		n.DataAtom = atom.Button
	}
}
