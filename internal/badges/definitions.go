package badges

import "cinehub/internal/models"

// Catalog genre ids
const (
	GenreAction      = 28
	GenreAdventure   = 12
	GenreAnimation   = 16
	GenreComedy      = 35
	GenreCrime       = 80
	GenreDocumentary = 99
	GenreDrama       = 18
	GenreFamily      = 10751
	GenreFantasy     = 14
	GenreHistory     = 36
	GenreHorror      = 27
	GenreMusic       = 10402
	GenreMystery     = 9648
	GenreRomance     = 10749
	GenreScienceFic  = 878
	GenreTVMovie     = 10770 // no badges
	GenreThriller    = 53
	GenreWar         = 10752
	GenreWestern     = 37
)

type genreLadder struct {
	family  string
	genreID int
	icon    string
	names   [3]string
	descs   [3]string
}

var genreLadders = []genreLadder{
	{"action", GenreAction, "action", [3]string{"Quick", "Stunt Double", "Unstoppable"},
		[3]string{"5 action movies.", "20 action movies. You love explosions.", "50 action movies. A one-person army."}},
	{"horror", GenreHorror, "horror", [3]string{"Night Light", "Fearless", "Nerves of Steel"},
		[3]string{"5 horror movies. Leave the lights on.", "20 horror movies. You're used to it now.", "50 horror movies. Nothing scares you."}},
	{"adventure", GenreAdventure, "adventure", [3]string{"Wanderer", "Explorer", "Treasure Hunter"},
		[3]string{"5 adventure movies.", "20 adventure movies. New worlds discovered.", "50 adventure movies. Chasing the treasure."}},
	{"anim", GenreAnimation, "animation", [3]string{"Cartoon Fan", "Daydreamer", "Young at Heart"},
		[3]string{"5 animations.", "20 animations. You love colorful worlds.", "50 animations. You'll never grow up!"}},
	{"comedy", GenreComedy, "comedy", [3]string{"Smiler", "Joker", "Laugh Machine"},
		[3]string{"5 comedies.", "20 comedies. Life is good.", "50 comedies. The life of the party!"}},
	{"crime", GenreCrime, "crime", [3]string{"Detective", "Partner in Crime", "Godfather"},
		[3]string{"5 crime movies.", "20 crime movies. Case closed.", "50 crime movies. The underworld answers to you."}},
	{"doc", GenreDocumentary, "documentary", [3]string{"Student", "Sage", "Encyclopedia"},
		[3]string{"5 documentaries.", "20 documentaries. Your culture level is rising.", "50 documentaries. A walking source of knowledge."}},
	{"drama", GenreDrama, "drama", [3]string{"Thoughtful", "Melancholic", "Oscar Nominee"},
		[3]string{"5 dramas.", "20 dramas. Rivers of tears.", "50 dramas. Life itself is a movie."}},
	{"family", GenreFamily, "family", [3]string{"Homebody", "Family Person", "Our Family"},
		[3]string{"5 family movies.", "20 family movies. Sunday cinema mood.", "50 family movies. Family comes first."}},
	{"fantasy", GenreFantasy, "fantasy", [3]string{"Wizard", "Dragon Tamer", "Middle-earth Resident"},
		[3]string{"5 fantasy movies.", "20 fantasy movies. Your imagination knows no bounds.", "50 fantasy movies. Legends came true."}},
	{"history", GenreHistory, "history", [3]string{"Historian", "Time Traveler", "Emperor"},
		[3]string{"5 history movies.", "20 history movies. You witnessed the past.", "50 history movies. History repeats itself."}},
	{"music", GenreMusic, "music", [3]string{"Listener", "Soloist", "Maestro"},
		[3]string{"5 musicals.", "20 musicals. You're keeping the beat.", "50 musicals. The stage is yours!"}},
	{"mystery", GenreMystery, "mystery", [3]string{"Skeptic", "Sherlock", "Unsolved Riddle"},
		[3]string{"5 mystery movies.", "20 mystery movies. No detail escapes you.", "50 mystery movies. You solve every riddle."}},
	{"romance", GenreRomance, "romance", [3]string{"Sentimental", "In Love", "Casanova"},
		[3]string{"5 romance movies.", "20 romance movies. Looking for love.", "50 romance movies. Heart thief!"}},
	{"scifi", GenreScienceFic, "science_fiction", [3]string{"Curious", "Astronaut", "Galactic Emperor"},
		[3]string{"5 science fiction movies.", "20 science fiction movies. You came from the future.", "50 science fiction movies. Space is your playground."}},
	{"thriller", GenreThriller, "thriller", [3]string{"Tense", "Cool-headed", "Iceman"},
		[3]string{"5 thrillers.", "20 thrillers. Your pulse never rises.", "50 thrillers. Nerves of ice."}},
	{"war", GenreWar, "war", [3]string{"Private", "Veteran", "Commander"},
		[3]string{"5 war movies.", "20 war movies. Back from the front.", "50 war movies. Master strategist."}},
	{"western", GenreWestern, "western", [3]string{"Cowboy", "Sheriff", "Wild West Legend"},
		[3]string{"5 westerns.", "20 westerns. You keep order in town.", "50 westerns. Fastest draw in the West."}},
}

var genreTiers = [3]struct {
	tier      models.BadgeTier
	threshold int64
}{
	{models.BadgeTierBronze, 5},
	{models.BadgeTierSilver, 20},
	{models.BadgeTierGold, 50},
}

// DefaultDefinitions returns the production badge table in display order:
// loyalty, interaction, then one bronze/silver/gold ladder per genre.
func DefaultDefinitions() []models.BadgeDefinition {
	defs := []models.BadgeDefinition{
		{ID: "loyalty_new", Name: "New Member", Description: "Welcome aboard!", Icon: "time_fast",
			Category: models.BadgeCategoryLoyalty, Tier: models.BadgeTierBronze, Threshold: 0},
		{ID: "loyalty_1month", Name: "Regular", Description: "One month with us. You're settled in.", Icon: "time_fast",
			Category: models.BadgeCategoryLoyalty, Tier: models.BadgeTierSilver, Threshold: 30},
		{ID: "loyalty_1year", Name: "Old Friend", Description: "One year here. You're part of the furniture!", Icon: "time_fast",
			Category: models.BadgeCategoryLoyalty, Tier: models.BadgeTierGold, Threshold: 365},

		{ID: "comment_bronze", Name: "Voice", Description: "You wrote your first comment.", Icon: "edit",
			Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierBronze, Threshold: 1},
		{ID: "comment_silver", Name: "Writer", Description: "10 comments. Bless your keyboard.", Icon: "sort_alphabetically",
			Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierSilver, Threshold: 10},
		{ID: "comment_gold", Name: "Cinema Authority", Description: "50 comments! Everyone listens to you.", Icon: "save",
			Category: models.BadgeCategoryInteraction, Tier: models.BadgeTierGold, Threshold: 50},
	}

	for _, ladder := range genreLadders {
		genreID := ladder.genreID
		for i, rung := range genreTiers {
			defs = append(defs, models.BadgeDefinition{
				ID:             ladder.family + "_" + string(rung.tier),
				Name:           ladder.names[i],
				Description:    ladder.descs[i],
				Icon:           ladder.icon,
				Category:       models.BadgeCategoryGenre,
				Tier:           rung.tier,
				Threshold:      rung.threshold,
				RelatedGenreID: &genreID,
			})
		}
	}

	return defs
}

// NewDefaultCatalog builds the catalog from DefaultDefinitions.
func NewDefaultCatalog() *Catalog {
	return MustNewCatalog(DefaultDefinitions())
}
