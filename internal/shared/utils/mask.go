package utils

import "strings"

// MaskEmail keeps the first character of the local part and the domain,
// e.g. "marie@exemple.fr" becomes "m***@exemple.fr".
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
