package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRawHTML(t *testing.T) {
	m := To("buyer@example.com").
		Subject("Your order is confirmed").
		Body("<p>Thanks!</p>")

	raw := string(m.buildRaw("Storefront <orders@storefront.app>"))

	assert.Contains(t, raw, "To: buyer@example.com\r\n")
	assert.Contains(t, raw, "Subject: Your order is confirmed\r\n")
	assert.Contains(t, raw, `Content-Type: text/html; charset="UTF-8"`)
	assert.True(t, strings.HasSuffix(raw, "<p>Thanks!</p>"))
}

func TestTextSwitchesContentType(t *testing.T) {
	m := To("buyer@example.com").
		Subject("Receipt").
		Text("Thanks for your order.")

	raw := string(m.buildRaw("Storefront <orders@storefront.app>"))

	assert.Contains(t, raw, `Content-Type: text/plain; charset="UTF-8"`)
	assert.NotContains(t, raw, "text/html")
}

func TestBuildRawMultipleRecipients(t *testing.T) {
	m := To("a@example.com", "b@example.com").Subject("Hi").Text("hello")

	raw := string(m.buildRaw("Storefront <orders@storefront.app>"))
	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
}

func TestSendWithoutCredentials(t *testing.T) {
	// UseConfig pins the SMTP settings so the test is independent of any
	// MAIL_* values in the environment.
	err := To("buyer@example.com").
		Subject("Receipt").
		Text("hello").
		UseConfig(SMTP{}).
		Send()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_USERNAME")
}
