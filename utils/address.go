package utils

import (
	"strings"

	"creatorpulse/models"

	"github.com/badoux/checkmail"
	"github.com/emersion/go-message/mail"
	"gopkg.in/gomail.v2"
)

// ValidEmail checks address syntax only; no MX or SMTP probing.
func ValidEmail(address string) bool {
	return checkmail.ValidateFormat(strings.TrimSpace(address)) == nil
}

// FormatContacts renders contacts as "Name <email>" lines, skipping entries
// without a usable address.
func FormatContacts(contacts []models.CreatorContact) []string {
	formatter := gomail.NewMessage()
	lines := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		email := strings.TrimSpace(contact.Email)
		if email == "" || !ValidEmail(email) {
			continue
		}
		name := strings.TrimSpace(contact.Name)
		if name == "" {
			lines = append(lines, email)
			continue
		}
		if plainDisplayName(name) {
			lines = append(lines, name+" <"+email+">")
			continue
		}
		// Quote or RFC 2047-encode names a mail client would misparse.
		lines = append(lines, formatter.FormatAddress(email, name))
	}
	return lines
}

func plainDisplayName(name string) bool {
	for _, r := range name {
		if r > 0x7e || r < 0x20 || strings.ContainsRune(`"(),:;<>@[\]`, r) {
			return false
		}
	}
	return true
}

// AddressText flattens an address header ("Ada <ada@x.com>, bob@y.com") into
// lowercase names and addresses for substring search. Unparseable headers are
// returned lowercased as-is.
func AddressText(header string) string {
	list, err := mail.ParseAddressList(header)
	if err != nil || len(list) == 0 {
		return strings.ToLower(header)
	}
	parts := make([]string, 0, len(list)*2)
	for _, addr := range list {
		if addr.Name != "" {
			parts = append(parts, addr.Name)
		}
		parts = append(parts, addr.Address)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
