package roster

import (
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
)

// upstreamLegislator is the subset of an entry in legislators-current.yaml from the unitedstates/congress-legislators
// project that the quiz needs.
type upstreamLegislator struct {
	ID struct {
		Bioguide string `yaml:"bioguide"`
	} `yaml:"id"`
	Name struct {
		First        string `yaml:"first"`
		Last         string `yaml:"last"`
		OfficialFull string `yaml:"official_full"`
	} `yaml:"name"`
	Terms []struct {
		Type     string `yaml:"type"`
		State    string `yaml:"state"`
		District int    `yaml:"district"`
		Party    string `yaml:"party"`
	} `yaml:"terms"`
}

// ImportYAML converts legislators-current.yaml into quiz legislators.
//
// Only members whose most recent term is in the House are kept. Independents and other parties are dropped by
// [Sanitize].
func ImportYAML(r io.Reader, logger *slog.Logger) ([]models.Legislator, error) {
	var upstream []upstreamLegislator
	if err := yaml.NewDecoder(r).Decode(&upstream); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	legislators := make([]models.Legislator, 0, len(upstream))
	for _, u := range upstream {
		if len(u.Terms) == 0 {
			continue
		}
		term := u.Terms[len(u.Terms)-1]
		if term.Type != "rep" {
			continue
		}
		name := u.Name.OfficialFull
		if name == "" {
			name = fmt.Sprintf("%s %s", u.Name.First, u.Name.Last)
		}
		legislators = append(legislators, models.Legislator{
			ID:        u.ID.Bioguide,
			Name:      name,
			FirstName: u.Name.First,
			LastName:  u.Name.Last,
			Party:     models.Party(term.Party),
			State:     term.State,
			District:  term.District,
			ImageFile: u.ID.Bioguide + ".jpg",
		})
	}
	return Sanitize(legislators, logger), nil
}
