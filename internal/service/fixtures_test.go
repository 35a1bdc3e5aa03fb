package service

import (
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/pkg/codes"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testRegistry() *codes.Registry {
	return codes.FromMaps(
		map[string]string{
			"C11": "Nasopharynx",
			"C50": "Breast",
			"C61": "Prostate gland",
		},
		map[string]string{
			"8000/3": "Neoplasm, malignant",
			"8120/3": "Transitional cell carcinoma, NOS",
			"8140/3": "Adenocarcinoma, NOS",
			"8960/3": "Nephroblastoma, NOS",
		},
		map[string]string{"male": "Male", "female": "Female"},
		map[string]string{"Benign": "0", "Uncertain": "1", "In situ": "2", "Malignant": "3"},
		map[string]string{"G1": "1", "G2": "2", "G3": "3", "G4": "4"},
	)
}

// cleanRecord passes every check of all three stages
func cleanRecord(id string) *domain.Record {
	return domain.NewRecord(map[string]string{
		domain.FieldRegistrationNumber: id,
		domain.FieldSex:                "Male",
		domain.FieldBehavior:           "3",
		domain.FieldGrade:              "2",
		domain.FieldTopography:         "C11",
		domain.FieldHistology:          "8120/3",
		domain.FieldBasisOfDiagnosis:   "Histology",
		domain.FieldBirthDate:          "15/06/1980",
		domain.FieldDateOfIncidence:    "20/09/2020",
	})
}

func withField(rec *domain.Record, field, value string) *domain.Record {
	rec.Set(field, value)
	return rec
}

func hasMessage(rec *domain.Record, message string) bool {
	for _, m := range rec.ValidationResults {
		if m == message {
			return true
		}
	}
	return false
}
