package models

// BilingualText carries the French and English renditions of an official
// label, as both appear on the certificate.
type BilingualText struct {
	French  string `json:"french"`
	English string `json:"english"`
}

// Institution groups the issuing bodies named on the certificate.
type Institution struct {
	Name     BilingualText `json:"name"`
	School   BilingualText `json:"school"`
	Ministry BilingualText `json:"ministry"`
}

// DiplomaRecord is the structured result of field extraction. All flat fields
// are strings and always present; "" marks a field the extractor could not
// find.
type DiplomaRecord struct {
	DiplomaNumber      string        `json:"diplomaNumber"`
	Name               string        `json:"name"`
	BirthDate          string        `json:"birthDate"`
	BirthPlace         string        `json:"birthPlace"`
	Gender             string        `json:"gender"`
	RegistrationNumber string        `json:"registrationNumber"`
	Specialization     string        `json:"specialization"`
	Series             string        `json:"series"`
	Grade              string        `json:"grade"`
	IssueDate          string        `json:"issueDate"`
	SessionDate        string        `json:"sessionDate"`
	CertificateType    BilingualText `json:"certificateType"`
	Institution        Institution   `json:"institution"`
	QRCode             string        `json:"qrcode"`
}

// FieldNames lists the flat string fields of the record, in declaration
// order. Extraction strategies and the dispatch mapping must cover exactly
// these.
func (DiplomaRecord) FieldNames() []string {
	return []string{
		"diplomaNumber",
		"name",
		"birthDate",
		"birthPlace",
		"gender",
		"registrationNumber",
		"specialization",
		"series",
		"grade",
		"issueDate",
		"sessionDate",
	}
}
