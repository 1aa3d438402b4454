package domain

// DisciplineOther is assigned when the classifier answers with anything outside the list.
const DisciplineOther = "Interdisciplinary / Other"

// UnclassifiedLabel groups books whose discipline has not been assigned.
const UnclassifiedLabel = "Unclassified"

// Disciplines is the fixed academic-field enumeration used by the classifier.
var Disciplines = []string{
	"Philosophy & Ethics",
	"Literature & Linguistics",
	"History & Archaeology",
	"Sociology & Anthropology",
	"Psychology & Cognitive Science",
	"Economics & Management",
	"Political Science & Law",
	"Natural Sciences & Mathematics",
	"Computer Science & Technology",
	"Arts, Aesthetics & Design",
	"Education",
	"Medicine & Health",
	"Religious Studies & Theology",
	"Environmental Studies & Ecology",
	"Gender & Sexuality Studies",
	DisciplineOther,
}

var disciplineSet = func() map[string]bool {
	m := make(map[string]bool, len(Disciplines))
	for _, d := range Disciplines {
		m[d] = true
	}
	return m
}()

// IsDiscipline reports whether name is one of the enumerated disciplines.
func IsDiscipline(name string) bool {
	return disciplineSet[name]
}

// DisciplineLabel returns the grouping label for a stored discipline value.
func DisciplineLabel(discipline string) string {
	if discipline == "" {
		return UnclassifiedLabel
	}
	return discipline
}
