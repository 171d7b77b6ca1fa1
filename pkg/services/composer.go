package services

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/models"
)

const (
	fallbackFirstName = "Client"
	fallbackMessage   = "Aucun message spécifique"
	ackSubject        = "Nous avons bien reçu votre demande ✔"
)

// ComposedMessage is one email body in both representations.
type ComposedMessage struct {
	Subject string
	Text    string
	HTML    string
}

type row struct {
	Label string
	Value string
}

var notificationTmpl = template.Must(template.New("notification").Parse(`<div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;">
<h2 style="margin:0 0 12px">Demande reçue via {{.Brand}}</h2>
<table cellpadding="4" style="border-collapse:collapse">
{{- range .Rows}}
<tr><th align="left" style="padding-right:12px">{{.Label}}</th><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- if .Photos}}
<p style="margin:16px 0 4px"><strong>Photos :</strong></p>
<ul style="margin:0 0 16px;padding-left:18px">
{{- range .Photos}}
<li><a href="{{.}}" target="_blank" rel="noopener">{{.}}</a></li>
{{- end}}
</ul>
{{- end}}
<p style="white-space:pre-line">{{.Message}}</p>
<p style="color:#888;font-size:12px">— Email généré automatiquement par {{.Brand}}</p>
</div>`))

var ackTmpl = template.Must(template.New("ack").Parse(`<div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;">
<p>{{.Greeting}}</p>
<p>Merci pour votre demande. Notre équipe {{.Brand}} vous recontacte très vite (souvent sous quelques heures ouvrées).</p>
<p>Pour toute urgence, vous pouvez nous appeler au <a href="{{.TelHref}}">{{.PhoneDisplay}}</a> ({{.PhoneE164}}).</p>
<p>— {{.Brand}}<br>{{.BrandEmail}}</p>
</div>`))

var uploadTmpl = template.Must(template.New("upload").Parse(`<div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial;">
<h2 style="margin:0 0 12px">{{.Brand}} – Upload Cloudinary</h2>
<p style="margin:0 0 8px">Un fichier vient d'être téléversé :</p>
<ul style="margin:8px 0 16px;padding-left:18px">
{{- range .Rows}}
<li><strong>{{.Label}}</strong> {{.Value}}</li>
{{- end}}
</ul>
<p style="margin:0 0 8px"><strong>URL sécurisée : </strong><a href="{{.SecureURL}}" target="_blank" rel="noopener">{{.SecureURL}}</a></p>
{{- if .Requester}}
<p style="margin:12px 0 0"><strong>Demandeur :</strong> {{.Requester}}</p>
{{- end}}
</div>`))

// Composer renders notification and acknowledgment emails.
type Composer struct {
	brand        string
	brandEmail   string
	phoneDisplay string
	phoneE164    string
}

// NewComposer creates a composer for the configured brand.
func NewComposer(cfg *config.Config) *Composer {
	return &Composer{
		brand:        cfg.BrandName,
		brandEmail:   cfg.BrandEmail,
		phoneDisplay: cfg.BrandPhoneDisplay,
		phoneE164:    cfg.BrandPhoneE164,
	}
}

// Notification builds the internal email describing a lead.
func (c *Composer) Notification(sub models.ValidatedSubmission) (ComposedMessage, error) {
	subject := fmt.Sprintf("🧼 Nouvelle demande – %s", orDefault(sub.FirstName, fallbackFirstName))
	if sub.LastName != "" {
		subject += " " + sub.LastName
	}
	if sub.PostalCode != "" {
		subject += fmt.Sprintf(" (%s)", sub.PostalCode)
	}

	rows := presentRows(
		row{"Prénom :", sub.FirstName},
		row{"Nom :", sub.LastName},
		row{"Email :", sub.Email},
		row{"Téléphone (E164) :", sub.NormalizedPhone},
		row{"Téléphone (brut) :", sub.Phone},
		row{"Code postal :", sub.PostalCode},
		row{"Surface :", sub.Surface},
		row{"Source :", sub.Source},
		row{"RGPD :", sub.Consent},
	)
	message := orDefault(sub.Message, fallbackMessage)

	lines := []string{fmt.Sprintf("——— Demande reçue via %s ———", c.brand)}
	for _, r := range rows {
		lines = append(lines, r.Label+" "+r.Value)
	}
	if len(sub.Photos) > 0 {
		lines = append(lines, "", "Photos :")
		for _, u := range sub.Photos {
			lines = append(lines, "- "+u)
		}
	}
	lines = append(lines, "", message, "", "— Email généré automatiquement par "+c.brand)

	var html bytes.Buffer
	err := notificationTmpl.Execute(&html, struct {
		Brand   string
		Rows    []row
		Photos  []string
		Message string
	}{c.brand, rows, sub.Photos, message})
	if err != nil {
		return ComposedMessage{}, fmt.Errorf("error rendering notification: %w", err)
	}

	return ComposedMessage{
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
		HTML:    html.String(),
	}, nil
}

// Acknowledgment builds the customer-facing receipt. It never echoes the
// submitted fields besides the first name used in the greeting.
func (c *Composer) Acknowledgment(sub models.ValidatedSubmission) (ComposedMessage, error) {
	greeting := "Bonjour,"
	if sub.FirstName != "" {
		greeting = fmt.Sprintf("Bonjour %s,", sub.FirstName)
	}

	text := strings.Join([]string{
		greeting,
		"",
		fmt.Sprintf("Merci pour votre demande. Notre équipe %s vous recontacte très vite (souvent sous quelques heures ouvrées).", c.brand),
		"",
		fmt.Sprintf("Pour toute urgence, vous pouvez nous appeler au %s (%s).", c.phoneDisplay, c.phoneE164),
		"",
		"— " + c.brand,
		c.brandEmail,
	}, "\n")

	var html bytes.Buffer
	err := ackTmpl.Execute(&html, struct {
		Greeting     string
		Brand        string
		BrandEmail   string
		PhoneDisplay string
		PhoneE164    string
		TelHref      template.URL
	}{
		Greeting:     greeting,
		Brand:        c.brand,
		BrandEmail:   c.brandEmail,
		PhoneDisplay: c.phoneDisplay,
		PhoneE164:    c.phoneE164,
		// The number comes from configuration, not from the visitor.
		TelHref: template.URL("tel:" + c.phoneE164),
	})
	if err != nil {
		return ComposedMessage{}, fmt.Errorf("error rendering acknowledgment: %w", err)
	}

	return ComposedMessage{Subject: ackSubject, Text: text, HTML: html.String()}, nil
}

// UploadNotice builds the internal email sent after a direct upload.
func (c *Composer) UploadNotice(n models.UploadNotice) (ComposedMessage, error) {
	rows := []row{
		{"Nom :", orDefault(n.File.Name, "-")},
		{"Taille :", FormatBytes(n.File.Size)},
		{"Type :", orDefault(n.File.Type, "-")},
		{"Dossier :", orDefault(n.Cloudinary.Folder, "-")},
		{"Public ID :", orDefault(n.Cloudinary.PublicID, "-")},
	}

	requester := ""
	if n.Form.Name != "" || n.Form.Email != "" {
		requester = strings.TrimSpace(fmt.Sprintf("%s <%s>", n.Form.Name, n.Form.Email))
	}

	lines := []string{fmt.Sprintf("%s – Upload Cloudinary", c.brand), "", "Un fichier vient d'être téléversé :"}
	for _, r := range rows {
		lines = append(lines, "- "+r.Label+" "+r.Value)
	}
	lines = append(lines, "", "URL sécurisée : "+n.Cloudinary.SecureURL)
	if requester != "" {
		lines = append(lines, "Demandeur : "+requester)
	}

	var html bytes.Buffer
	err := uploadTmpl.Execute(&html, struct {
		Brand     string
		Rows      []row
		SecureURL string
		Requester string
	}{c.brand, rows, n.Cloudinary.SecureURL, requester})
	if err != nil {
		return ComposedMessage{}, fmt.Errorf("error rendering upload notice: %w", err)
	}

	return ComposedMessage{
		Subject: fmt.Sprintf("Nouvel upload Cloudinary – %s", orDefault(n.File.Name, "fichier")),
		Text:    strings.Join(lines, "\n"),
		HTML:    html.String(),
	}, nil
}

// FormatBytes renders a size with one decimal: 0 B, 512.0 B, 1.5 KB, 2.0 MB.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	sizes := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(n)/math.Pow(1024, float64(i)), sizes[i])
}

func presentRows(rows ...row) []row {
	out := rows[:0]
	for _, r := range rows {
		if r.Value != "" {
			out = append(out, r)
		}
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
