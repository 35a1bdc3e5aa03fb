package service

import (
	"fmt"
	"strconv"
	"strings"
)

// ageRange is an inclusive range of completed years
type ageRange struct {
	min, max int
}

func (r ageRange) contains(age int) bool { return age >= r.min && age <= r.max }

func (r ageRange) String() string { return fmt.Sprintf("%d-%d", r.min, r.max) }

// childhoodGroup lists the histologies of one childhood tumour diagnostic group
// and the ages at which they are expected.
type childhoodGroup struct {
	name        string
	histologies []string
	ages        ageRange
}

var childhoodGroups = []childhoodGroup{
	{name: "Hodgkin lymphoma", histologies: []string{"9650", "9651", "9652", "9653", "9655"}, ages: ageRange{0, 2}},
	{name: "Neuroblastoma", histologies: []string{"9500", "9501", "9502"}, ages: ageRange{10, 14}},
	{name: "Retinoblastoma", histologies: []string{"9510", "9511", "9512"}, ages: ageRange{6, 14}},
	{name: "Wilms tumour", histologies: []string{"8960", "8961"}, ages: ageRange{9, 14}},
	{name: "Renal carcinoma", histologies: []string{"8310", "8312"}, ages: ageRange{0, 8}},
	{name: "Hepatoblastoma", histologies: []string{"8970"}, ages: ageRange{6, 14}},
	{name: "Hepatic carcinoma", histologies: []string{"8170", "8171"}, ages: ageRange{0, 8}},
	{name: "Osteosarcoma", histologies: []string{"9180", "9181", "9183"}, ages: ageRange{0, 5}},
	{name: "Chondrosarcoma", histologies: []string{"9220", "9240"}, ages: ageRange{0, 5}},
	{name: "Ewing sarcoma", histologies: []string{"9260", "9261"}, ages: ageRange{0, 3}},
	{name: "Non-gonadal germ cell tumour", histologies: []string{"9064", "9065", "9070", "9071", "9072"}, ages: ageRange{8, 14}},
	{name: "Gonadal carcinoma", histologies: []string{"8323", "8324"}, ages: ageRange{0, 14}},
	{name: "Thyroid carcinoma", histologies: []string{"8340", "8341"}, ages: ageRange{0, 5}},
	{name: "Nasopharyngeal carcinoma", histologies: []string{"8070", "8071"}, ages: ageRange{0, 5}},
	{name: "Skin carcinoma", histologies: []string{"8090", "8091"}, ages: ageRange{0, 4}},
	{name: "Carcinoma, NOS", histologies: []string{"8010", "8011"}, ages: ageRange{0, 4}},
	{name: "Mesothelial neoplasm", histologies: []string{"9050", "9051", "9052"}, ages: ageRange{0, 14}},
}

// adultAgeThreshold marks the start of the age-dependent exclusions
const adultAgeThreshold = 15

var (
	under20Sites             = []string{"C15", "C19", "C20", "C21", "C23", "C24", "C38.4", "C50", "C53", "C54", "C55"}
	under20NonCarcinoidSites = []string{"C33", "C34", "C18"}
	youngAdultHistologies    = []string{"9732", "9823"}
	childhoodOnlyHistologies = []string{"8910", "8960", "8970", "8981", "8991", "9072", "9470", "9510", "9511", "9512", "9513", "9514", "9515", "9516", "9517", "9518", "9519"}
)

// ageSiteRule expects ages within a range for a site prefix and a histology condition
type ageSiteRule struct {
	sitePrefix      string
	histologyPrefix string
	histologyMax    int
	ages            ageRange
}

func (r ageSiteRule) matchesHistology(histology string) bool {
	switch {
	case r.histologyPrefix != "":
		return strings.HasPrefix(histology, r.histologyPrefix)
	case r.histologyMax > 0:
		n, err := strconv.Atoi(histology)
		return err == nil && n <= r.histologyMax
	default:
		return false
	}
}

// C58 with 9100 above 45 is left to the adult exclusions; a range here would
// contradict them.
var ageSiteRules = []ageSiteRule{
	{sitePrefix: "C61", histologyPrefix: "814", ages: ageRange{15, 39}},
	{sitePrefix: "C17", histologyMax: 9589, ages: ageRange{0, 19}},
	{sitePrefix: "C33", histologyPrefix: "824", ages: ageRange{0, 19}},
}

// sexFamilyRule excludes histological families (first two digits) for one sex
type sexFamilyRule struct {
	sex      string
	families []string
}

var sexHistologyRules = []sexFamilyRule{
	{sex: "Male", families: []string{"23", "24", "25", "26", "27"}},
	{sex: "Female", families: []string{"28", "29"}},
}

// sexSiteRule excludes sites for one sex
type sexSiteRule struct {
	sex   string
	sites []string
}

var sexSiteRules = []sexSiteRule{
	{sex: "Male", sites: []string{"C51", "C52", "C53", "C54", "C55", "C56", "C57", "C58"}},
	{sex: "Female", sites: []string{"C60", "C61", "C62", "C63"}},
}

// valueSetRule excludes a set of values of one field when another field holds value
type valueSetRule struct {
	value string
	set   []string
}

var (
	behaviorSiteRules = []valueSetRule{
		{value: "2", set: []string{"C40", "C41", "C42", "C47", "C49", "C70", "C71", "C72"}},
	}
	behaviorHistologyRules = []valueSetRule{
		{value: "2", set: []string{"8910", "8960", "8970", "8981", "8991", "9072", "9470"}},
	}
	gradeHistologyRules = []valueSetRule{
		{value: "1", set: []string{"8140", "8500"}},
		{value: "3", set: []string{"9702", "9714"}},
	}
	basisHistologyRules = []valueSetRule{
		{value: "Histology", set: []string{"8000", "8150", "9100"}},
		{value: "Clinical", set: []string{"9590", "9591"}},
	}
)

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
