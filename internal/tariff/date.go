package tariff

import "strings"

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// ConvertDate turns a source "DD/MM/YYYY" date into "YYYY-MM-DD". Dates already
// in ISO order pass through. Anything else, including an empty field, yields nil;
// the value is not checked further here and the validator rejects it if it
// ends up in a mandatory field.
func ConvertDate(s string) *string {
	s = strings.TrimSpace(s)
	if parts := strings.Split(s, "/"); len(parts) == 3 {
		out := parts[2] + "-" + parts[1] + "-" + parts[0]
		return &out
	}
	if parts := strings.Split(s, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		return &s
	}
	return nil
}
