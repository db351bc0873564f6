package models

import (
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"log/slog"
	"strings"
)

var ErrInvalidParty = errors.NewSentinel("invalid party")

// Party is the party label a legislator is scored against. Only [PartyRepublican] and [PartyDemocrat] are
// admissible.
type Party string

const (
	PartyRepublican Party = "Republican"
	PartyDemocrat   Party = "Democrat"
)

// Parties lists the admissible parties in the order they are offered to the player.
func Parties() []Party {
	return []Party{PartyRepublican, PartyDemocrat}
}

// Valid reports whether p is one of the admissible parties.
func (p Party) Valid() bool {
	return p == PartyRepublican || p == PartyDemocrat
}

// ParseParty normalises case and surrounding whitespace of s and returns the matching party.
func ParseParty(s string) (Party, error) {
	normalised := strings.TrimSpace(s)
	for _, p := range Parties() {
		if strings.EqualFold(normalised, string(p)) {
			return p, nil
		}
	}
	return "", errors.Wrap(ErrInvalidParty, "parse party", slog.String("party", s))
}

// Legislator is a member of the House of Representatives as presented in a quiz round.
type Legislator struct {
	// ID is the Bioguide identifier, e.g. "P000197".
	ID        string `db:"bioguide_id" json:"bioguide_id"`
	Name      string `db:"name"        json:"name"`
	FirstName string `db:"first_name"  json:"first_name"`
	LastName  string `db:"last_name"   json:"last_name"`
	Party     Party  `db:"party"       json:"party"`
	State     string `db:"state"       json:"state"`
	// District is 0 for at-large seats.
	District int `db:"district" json:"district"`
	// ImageFile is the portrait file name relative to the portrait directory.
	ImageFile string `db:"image_file" json:"image_file"`
}

// DistrictLabel is the human-readable district, e.g. "District 12" or "At-Large".
func (l Legislator) DistrictLabel() string {
	if l.District == 0 {
		return "At-Large"
	}
	return fmt.Sprintf("District %d", l.District)
}
