package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

// TestBuildMail - payload do /sendMail a partir do template renderizado
func TestBuildMail(t *testing.T) {
	lead := entity.Lead{Name: "Maria", Email: "maria@example.com"}

	msg := buildMail("Quick question", "Hi Maria, ...", lead)

	assert.Equal(t, "Quick question", msg.Subject)
	assert.Equal(t, "Text", msg.Body.ContentType)
	assert.Equal(t, "Hi Maria, ...", msg.Body.Content)
	require.Len(t, msg.ToRecipients, 1)
	assert.Equal(t, "maria@example.com", msg.ToRecipients[0].EmailAddress.Address)
	assert.Equal(t, "Maria", msg.ToRecipients[0].EmailAddress.Name)
}
