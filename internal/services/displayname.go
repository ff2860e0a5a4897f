package services

import (
	"strings"

	"github.com/go-authgate/devicelink/internal/models"
)

const (
	minDisplayNameLength = 2
	maxDisplayNameLength = 20
)

// FilterDisplayName keeps ASCII letters, digits and -_[] and truncates the
// result. It returns "" when fewer than two characters survive.
func FilterDisplayName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name) && b.Len() < maxDisplayNameLength; i++ {
		if isDisplayNameChar(name[i]) {
			b.WriteByte(name[i])
		}
	}
	if b.Len() < minDisplayNameLength {
		return ""
	}
	return b.String()
}

func isDisplayNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '[', c == ']':
		return true
	}
	return false
}

// SelectDisplayName picks the first usable name from the provider's global
// name, the provider username, the account username and the account id.
func SelectDisplayName(identity *models.ProviderIdentity, account *models.Account) string {
	var candidates []string
	if identity != nil {
		candidates = append(candidates, identity.GlobalName, identity.Username)
	}
	if account != nil {
		candidates = append(candidates, account.Username, account.ID)
	}
	for _, candidate := range candidates {
		if name := FilterDisplayName(candidate); name != "" {
			return name
		}
	}
	return ""
}
