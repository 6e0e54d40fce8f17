package reply

// page maps a site section to its internal link target. The table is static;
// answers embed these as Markdown-style links the client renders as
// navigation.
type page struct {
	Label string
	Path  string
	// Purpose is included in the generation prompt so the model links users
	// to the right section.
	Purpose string
}

var pages = []page{
	{"Home", "/", "landing page and overview"},
	{"Why Eco-Camping", "/why", "why eco-friendly camping matters"},
	{"Campsites", "/camp", "full campsite listing with map and filters"},
	{"Recommender", "/recommender", "guided campsite recommendation quiz"},
	{"Footprints", "/footprints", "carbon footprint calculator"},
	{"Camping Guide", "/guide", "camping tips and preparation guide"},
	{"Plant Identifier", "/plant", "identify plants from photos"},
	{"Forest Insights", "/insights", "deforestation data and insights"},
}

// link formats a Markdown-style link for the given page path.
func link(label, path string) string {
	return "[" + label + "](" + path + ")"
}
