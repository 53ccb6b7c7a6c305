package validation

import (
	"regexp"
	"strings"
)

var (
	emailLocalPart = regexp.MustCompile("^[-!#$%&'*+/=?^_`{}|~0-9A-Za-z]+(\\.[-!#$%&'*+/=?^_`{}|~0-9A-Za-z]+)*$")
	emailDomain    = regexp.MustCompile(`^(?:[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+(?:[A-Za-z0-9-]{1,62}[A-Za-z0-9])$`)
)

// isEmail accepts dot-atom addresses on a dotted domain. Quoted local parts,
// IP literals and single-label hosts are rejected. Non-strings pass so the
// type keyword reports them.
func isEmail(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 64 || len(domain) > 253 {
		return false
	}
	return emailLocalPart.MatchString(local) && emailDomain.MatchString(domain)
}
