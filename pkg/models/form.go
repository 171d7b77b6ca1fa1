package models

// DefaultSource tags submissions that do not say where they came from.
const DefaultSource = "form"

// Submission is one contact-form request, already decoded from its wire format.
// It lives for a single request and is never stored.
type Submission struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string // raw "telephone" / "phone" value
	PhoneE164  string // "telephone_e164" as sent by the enhanced front-end
	PostalCode string
	Surface    string
	Message    string
	Source     string
	Consent    string
	Photos     []string

	// Honeypot is the hidden "website" field; humans leave it empty.
	Honeypot string
}

// ValidatedSubmission is a Submission that passed validation.
type ValidatedSubmission struct {
	Submission

	// NormalizedPhone is the +33XXXXXXXXX form of the phone.
	NormalizedPhone string
	// HasEmail is true when an email was sent and has a valid shape.
	HasEmail bool
}

// ValidationError reports the first field that failed validation.
// Message is shown to the visitor as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UploadNotice is the payload the browser posts after a direct upload succeeded.
type UploadNotice struct {
	File struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
		Type string `json:"type"`
	} `json:"file"`
	Cloudinary struct {
		SecureURL string `json:"secure_url"`
		Folder    string `json:"folder"`
		PublicID  string `json:"public_id"`
	} `json:"cloudinary"`
	Form struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"form"`
}
