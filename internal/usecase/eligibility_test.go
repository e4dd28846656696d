package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexandrehuynh/client-outreach/internal/entity"
)

var (
	passNow       = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	followUpDelay = 48 * time.Hour
)

func contactedLead(id string, contactedAt time.Time) entity.Lead {
	return entity.Lead{
		ID:            id,
		Email:         id + "@example.com",
		Status:        entity.StatusContacted,
		DateContacted: &contactedAt,
	}
}

// TestEligibleForInitialPass - só leads New entram no pass inicial
func TestEligibleForInitialPass(t *testing.T) {
	cases := []struct {
		status entity.Status
		want   bool
	}{
		{entity.StatusNew, true},
		{entity.StatusContacted, false},
		{entity.StatusFollowUpSent, false},
		{entity.StatusResponded, false},
		{entity.StatusConverted, false},
		{entity.StatusUnsubscribed, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			lead := entity.Lead{ID: "1", Email: "a@b.com", Status: tc.status}
			assert.Equal(t, tc.want, EligibleForPass(lead, PassInitial, passNow, followUpDelay))
		})
	}
}

// TestFollowUpEligibilityDependeDoDelay
func TestFollowUpEligibilityDependeDoDelay(t *testing.T) {
	// contatado há exatamente 48h: elegível (>= delay)
	onTime := contactedLead("a", passNow.Add(-48*time.Hour))
	assert.True(t, EligibleForPass(onTime, PassFollowUp, passNow, followUpDelay))

	// contatado há 47h: ainda não
	early := contactedLead("b", passNow.Add(-47*time.Hour))
	assert.False(t, EligibleForPass(early, PassFollowUp, passNow, followUpDelay))
}

// TestFollowUpSuprimidoPorResposta - lead que respondeu nunca recebe follow-up
func TestFollowUpSuprimidoPorResposta(t *testing.T) {
	lead := contactedLead("a", passNow.Add(-72*time.Hour))
	responded := passNow.Add(-24 * time.Hour)
	lead.ResponseReceived = &responded

	assert.False(t, EligibleForPass(lead, PassFollowUp, passNow, followUpDelay))
}

// TestFollowUpExigeDateContacted
func TestFollowUpExigeDateContacted(t *testing.T) {
	lead := entity.Lead{ID: "a", Email: "a@b.com", Status: entity.StatusContacted}
	assert.False(t, EligibleForPass(lead, PassFollowUp, passNow, followUpDelay))
}

// TestFilterEligibleIsIdempotent - mesmo snapshot, mesmo resultado, mesma ordem
func TestFilterEligibleIsIdempotent(t *testing.T) {
	snapshot := []entity.Lead{
		{ID: "1", Email: "1@x.com", Status: entity.StatusNew},
		contactedLead("2", passNow.Add(-72*time.Hour)),
		{ID: "3", Email: "3@x.com", Status: entity.StatusNew},
		{ID: "4", Email: "4@x.com", Status: entity.StatusUnsubscribed},
	}

	first := FilterEligible(snapshot, PassInitial, passNow, followUpDelay)
	second := FilterEligible(snapshot, PassInitial, passNow, followUpDelay)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, "1", first[0].ID, "ordem do snapshot preservada")
	assert.Equal(t, "3", first[1].ID)
}

// TestNormalizePhoneE164
func TestNormalizePhoneE164(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"(555) 123-4567", "+15551234567", false},
		{"555.123.4567", "+15551234567", false},
		{"15551234567", "+15551234567", false},
		{"+1 555 123 4567", "+15551234567", false},
		{"12345", "", true},
		{"+44 20 7946 0958", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizePhoneE164(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestValidateContact
func TestValidateContact(t *testing.T) {
	assert.Empty(t, ValidateContact("a@b.com", ""))
	assert.Empty(t, ValidateContact("", "5551234567"))

	errs := ValidateContact("", "")
	assert.Len(t, errs, 1)
	assert.Equal(t, "contact", errs[0].Field)

	errs = ValidateContact("not-an-email", "12")
	assert.Len(t, errs, 2)
}
