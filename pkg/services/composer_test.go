package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klinova/klinova-api/pkg/models"
)

func fullSubmission() models.ValidatedSubmission {
	return models.ValidatedSubmission{
		Submission: models.Submission{
			FirstName:  "Jeanne",
			LastName:   "Martin",
			Email:      "jeanne@example.fr",
			Phone:      "06 12 34 56 78",
			PostalCode: "75011",
			Surface:    "120 m²",
			Message:    "Moquette à nettoyer",
			Source:     "landing",
			Consent:    "on",
			Photos:     []string{"https://res.cloudinary.com/a.jpg", "https://res.cloudinary.com/b.jpg"},
		},
		NormalizedPhone: "+33612345678",
		HasEmail:        true,
	}
}

func TestComposer_NotificationFull(t *testing.T) {
	c := NewComposer(testConfig(nil))
	msg, err := c.Notification(fullSubmission())
	require.NoError(t, err)

	assert.Equal(t, "🧼 Nouvelle demande – Jeanne Martin (75011)", msg.Subject)

	lines := strings.Split(msg.Text, "\n")
	assert.Equal(t, "——— Demande reçue via Klinova ———", lines[0])
	assert.Contains(t, lines, "Prénom : Jeanne")
	assert.Contains(t, lines, "Nom : Martin")
	assert.Contains(t, lines, "Email : jeanne@example.fr")
	assert.Contains(t, lines, "Téléphone (E164) : +33612345678")
	assert.Contains(t, lines, "Téléphone (brut) : 06 12 34 56 78")
	assert.Contains(t, lines, "Code postal : 75011")
	assert.Contains(t, lines, "Surface : 120 m²")
	assert.Contains(t, lines, "Source : landing")
	assert.Contains(t, lines, "RGPD : on")
	assert.Contains(t, lines, "Photos :")
	assert.Contains(t, lines, "- https://res.cloudinary.com/a.jpg")
	assert.Contains(t, lines, "Moquette à nettoyer")
	assert.Equal(t, "— Email généré automatiquement par Klinova", lines[len(lines)-1])

	assert.Contains(t, msg.HTML, `<a href="https://res.cloudinary.com/b.jpg"`)
	assert.Contains(t, msg.HTML, "<th align=\"left\" style=\"padding-right:12px\">Code postal :</th><td>75011</td>")
}

func TestComposer_NotificationMinimal(t *testing.T) {
	c := NewComposer(testConfig(nil))
	msg, err := c.Notification(models.ValidatedSubmission{
		Submission:      models.Submission{Phone: "0612345678", Source: models.DefaultSource},
		NormalizedPhone: "+33612345678",
	})
	require.NoError(t, err)

	assert.Equal(t, "🧼 Nouvelle demande – Client", msg.Subject)
	assert.Contains(t, msg.Text, "Aucun message spécifique")
	for _, absent := range []string{"Prénom :", "Nom :", "Email :", "Code postal :", "Surface :", "RGPD :", "Photos :"} {
		assert.NotContains(t, msg.Text, absent)
		assert.NotContains(t, msg.HTML, absent)
	}
	assert.NotContains(t, msg.HTML, "<ul")
}

func TestComposer_NotificationEscapesHTML(t *testing.T) {
	c := NewComposer(testConfig(nil))
	sub := fullSubmission()
	sub.FirstName = `<script>alert(1)</script>`
	sub.Photos = []string{"javascript:alert(1)"}

	msg, err := c.Notification(sub)
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.NotContains(t, msg.HTML, `href="javascript:`)
}

func TestComposer_Acknowledgment(t *testing.T) {
	c := NewComposer(testConfig(nil))
	msg, err := c.Acknowledgment(fullSubmission())
	require.NoError(t, err)

	assert.Equal(t, "Nous avons bien reçu votre demande ✔", msg.Subject)
	assert.True(t, strings.HasPrefix(msg.Text, "Bonjour Jeanne,"))
	assert.Contains(t, msg.Text, "Notre équipe Klinova")
	assert.Contains(t, msg.Text, "06 76 73 86 61 (+33676738661)")
	assert.Contains(t, msg.Text, "— Klinova\nonboarding@resend.dev")
	assert.Contains(t, msg.HTML, `href="tel:`)
	assert.NotContains(t, msg.HTML, "ZgotmplZ")

	for _, echoed := range []string{"75011", "Moquette", "06 12 34 56 78", "jeanne@example.fr", "cloudinary"} {
		assert.NotContains(t, msg.Text, echoed)
		assert.NotContains(t, msg.HTML, echoed)
	}
}

func TestComposer_AcknowledgmentWithoutFirstName(t *testing.T) {
	c := NewComposer(testConfig(nil))
	msg, err := c.Acknowledgment(models.ValidatedSubmission{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.Text, "Bonjour,\n"))
}

func TestComposer_UploadNotice(t *testing.T) {
	c := NewComposer(testConfig(map[string]string{"BRAND_NAME": "Acme"}))

	var n models.UploadNotice
	n.File.Name = "salon<1>.jpg"
	n.File.Size = 1536
	n.File.Type = "image/jpeg"
	n.Cloudinary.SecureURL = "https://res.cloudinary.com/demo/salon.jpg"
	n.Cloudinary.PublicID = "klinova/demandes/salon"
	n.Form.Name = "Jeanne"
	n.Form.Email = "jeanne@example.fr"

	msg, err := c.UploadNotice(n)
	require.NoError(t, err)

	assert.Equal(t, "Nouvel upload Cloudinary – salon<1>.jpg", msg.Subject)
	assert.Contains(t, msg.HTML, "Acme – Upload Cloudinary")
	assert.Contains(t, msg.HTML, "salon&lt;1&gt;.jpg")
	assert.Contains(t, msg.HTML, "1.5 KB")
	assert.Contains(t, msg.HTML, `href="https://res.cloudinary.com/demo/salon.jpg"`)
	assert.Contains(t, msg.HTML, "Jeanne &lt;jeanne@example.fr&gt;")
	assert.Contains(t, msg.Text, "- Dossier : -")
	assert.Contains(t, msg.Text, "Demandeur : Jeanne <jeanne@example.fr>")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
		{2048 * 1024 * 1024 * 1024, "2048.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), tt.in)
	}
}
