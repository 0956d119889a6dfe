package dripper

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Masker applies content-aware masking to a string value.
type Masker interface {
	Mask(value string) string
}

// MaskerFunc adapts a function to the Masker interface.
type MaskerFunc func(value string) string

// Mask calls f(value).
func (f MaskerFunc) Mask(value string) string { return f(value) }

// stars masks every character of value.
func stars(value string) string {
	return strings.Repeat("*", utf8.RuneCountInString(value))
}

// lastDigits keeps the last four digits and hands them to format.
// Values with fewer than four digits are masked entirely.
func lastDigits(format func(digits, last4 string) string) MaskerFunc {
	return func(value string) string {
		var b strings.Builder
		for _, r := range value {
			if unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		digits := b.String()
		if len(digits) < 4 {
			return stars(value)
		}
		return format(digits, digits[len(digits)-4:])
	}
}

// SSNMasker keeps the last four digits: 123-45-6789 -> ***-**-6789.
func SSNMasker() Masker {
	return lastDigits(func(_, last4 string) string {
		return "***-**-" + last4
	})
}

// PhoneMasker keeps the last four digits and the area-code parentheses if present.
func PhoneMasker() Masker {
	return MaskerFunc(func(value string) string {
		return lastDigits(func(digits, last4 string) string {
			switch {
			case len(digits) >= 10 && strings.HasPrefix(value, "("):
				return "(***) ***-" + last4
			case len(digits) >= 10:
				return "***-***-" + last4
			}
			return "***-" + last4
		})(value)
	})
}

// CardMasker keeps the last four digits and the grouping separator if present.
func CardMasker() Masker {
	return MaskerFunc(func(value string) string {
		return lastDigits(func(digits, last4 string) string {
			sep := ""
			switch {
			case strings.Contains(value, " "):
				sep = " "
			case strings.Contains(value, "-"):
				sep = "-"
			}
			if sep == "" {
				return strings.Repeat("*", len(digits)-4) + last4
			}
			groups := make([]string, (len(digits)-1)/4)
			for i := range groups {
				groups[i] = "****"
			}
			return strings.Join(append(groups, last4), sep)
		})(value)
	})
}

// EmailMasker keeps the first character of the local part and the domain.
func EmailMasker() Masker {
	return MaskerFunc(func(value string) string {
		at := strings.LastIndex(value, "@")
		if at < 1 {
			return stars(value)
		}
		first, _ := utf8.DecodeRuneInString(value)
		return string(first) + "***" + value[at:]
	})
}

// IPMasker keeps the network half of an address.
// IPv4 keeps two octets, IPv6 keeps four groups.
func IPMasker() Masker {
	return MaskerFunc(func(value string) string {
		if parts := strings.Split(value, "."); len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".xxx.xxx"
		}
		if !strings.Contains(value, ":") {
			return stars(value)
		}
		groups := expandIPv6(value)
		if len(groups) != 8 {
			return stars(value)
		}
		return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
	})
}

// expandIPv6 splits an address into groups, expanding a single "::".
func expandIPv6(value string) []string {
	head, tail, found := strings.Cut(value, "::")
	if !found {
		return strings.Split(value, ":")
	}
	if strings.Contains(tail, "::") {
		return nil
	}

	var left, right []string
	if head != "" {
		left = strings.Split(head, ":")
	}
	if tail != "" {
		right = strings.Split(tail, ":")
	}
	missing := 8 - len(left) - len(right)
	if missing < 0 {
		return nil
	}

	groups := append([]string{}, left...)
	for i := 0; i < missing; i++ {
		groups = append(groups, "0000")
	}
	return append(groups, right...)
}

// UUIDMasker keeps the first segment of a UUID.
func UUIDMasker() Masker {
	return MaskerFunc(func(value string) string {
		if strings.Count(value, "-") != 4 {
			return stars(value)
		}
		if _, err := uuid.Parse(value); err != nil {
			return stars(value)
		}
		first, _, _ := strings.Cut(value, "-")
		return first + "-****-****-****-************"
	})
}

// IBANMasker keeps the country code, check digits and last four characters.
func IBANMasker() Masker {
	return MaskerFunc(func(value string) string {
		runes := []rune(value)
		if len(runes) <= 8 {
			return stars(value)
		}
		return string(runes[:4]) + strings.Repeat("*", len(runes)-8) + string(runes[len(runes)-4:])
	})
}

// NameMasker keeps the first letter of each word.
func NameMasker() Masker {
	return MaskerFunc(func(value string) string {
		words := strings.Fields(value)
		for i, w := range words {
			runes := []rune(w)
			words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
		}
		return strings.Join(words, " ")
	})
}

// maskConverter applies a masker to string values.
func maskConverter(m Masker) ConvertFunc {
	return StringConverter("mask", m.Mask)
}

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskSSN:   SSNMasker(),
		MaskEmail: EmailMasker(),
		MaskPhone: PhoneMasker(),
		MaskCard:  CardMasker(),
		MaskIP:    IPMasker(),
		MaskUUID:  UUIDMasker(),
		MaskIBAN:  IBANMasker(),
		MaskName:  NameMasker(),
	}
}
