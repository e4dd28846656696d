package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateContact checa os dados de contato de um lead antes do envio.
func ValidateContact(email, phone string) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		errs = append(errs, ValidationError{"contact", "lead precisa de email ou telefone"})
		return errs
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, ValidationError{"email", "is invalid"})
		}
	}

	if phone != "" {
		if _, err := NormalizePhoneE164(phone); err != nil {
			errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
		}
	}

	return errs
}

// NormalizePhoneE164 limpa e formata um telefone norte-americano para E.164,
// como o provider de SMS exige.
func NormalizePhoneE164(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	if len(cleaned) == 10 {
		cleaned = "1" + cleaned
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		return "+" + cleaned, nil
	}

	return "", fmt.Errorf("telefone em formato inválido: %s", phone)
}
