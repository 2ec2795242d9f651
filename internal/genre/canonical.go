package genre

// aliases folds common spellings onto one canonical slug.
var aliases = map[string]string{
	"sci-fi":                  "science-fiction",
	"scifi":                   "science-fiction",
	"sf":                      "science-fiction",
	"science-fiction":         "science-fiction",
	"fantastique":             "fantasy",
	"fantasy":                 "fantasy",
	"ya":                      "young-adult",
	"teen":                    "young-adult",
	"young-adult":             "young-adult",
	"polar":                   "mystery",
	"policier":                "mystery",
	"crime":                   "mystery",
	"mystery":                 "mystery",
	"suspense":                "thriller",
	"thriller":                "thriller",
	"self-help":               "self-help",
	"selfhelp":                "self-help",
	"developpement-personnel": "self-help",
	"bd":                      "comics",
	"bande-dessinee":          "comics",
	"graphic-novel":           "comics",
	"comics":                  "comics",
	"manga":                   "manga",
	"biography":               "biography",
	"biographie":              "biography",
	"memoir":                  "biography",
	"historical":              "historical-fiction",
	"historique":              "historical-fiction",
	"romance":                 "romance",
	"roman":                   "fiction",
	"litterature":             "fiction",
	"literature":              "fiction",
	"fiction":                 "fiction",
	"horror":                  "horror",
	"horreur":                 "horror",
	"poetry":                  "poetry",
	"poesie":                  "poetry",
}

// Canonical returns the canonical slug for a raw genre label.
// Unknown labels fall back to their slug; blank labels return "".
func Canonical(raw string) string {
	slug := Slugify(raw)
	if slug == "" {
		return ""
	}
	if c, ok := aliases[slug]; ok {
		return c
	}
	return slug
}

// Distinct counts the distinct non-empty canonical genres among labels.
func Distinct(labels []string) int {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if c := Canonical(l); c != "" {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}
