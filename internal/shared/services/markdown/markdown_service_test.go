package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailConverter_Formatting(t *testing.T) {
	out, err := NewEmailConverter().Convert("Bonjour **Marie**,\n\n- un\n- deux")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Marie</strong>")
	assert.Contains(t, out, "<li>un</li>")
}

func TestEmailConverter_StripsUnsafeMarkup(t *testing.T) {
	out, err := NewEmailConverter().Convert("[clic](javascript:alert(1)) <script>alert(1)</script> ![x](https://exemple.fr/x.png)")
	require.NoError(t, err)
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<img")
}

func TestEmailConverter_KeepsHTTPSLinks(t *testing.T) {
	out, err := NewEmailConverter().Convert("[Facturation](https://app.formcraft.io/billing)")
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://app.formcraft.io/billing"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestEmailConverter_Tables(t *testing.T) {
	out, err := NewEmailConverter().Convert("| Mois | Réponses |\n|---|---|\n| 2026-03 | 80 |")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>80</td>")
}
